package navigation

// Pose is the last estimate of the robot relative to the target
// Angles are degrees, clockwise positive; lengths are millimeters
type Pose struct {
	// RelativeBearing is the direction of the target from the robot heading
	RelativeBearing float64 `json:"relative_bearing"`
	// RobotBearing is the robot heading relative to the target axis
	RobotBearing float64 `json:"robot_bearing"`
	// Distance is the range to the target
	Distance float64 `json:"distance"`
	// Strafe is the lateral offset of the target axis, right positive
	Strafe float64 `json:"strafe"`
}

// PoseCache holds the last known pose across cycles without visibility
//
// Values are only trustworthy in a cycle where Update was called: Snapshot reports
// that as fresh. Invalidate keeps values for degraded-visibility maneuvers
type PoseCache struct {
	pose  Pose
	fresh bool
	known bool
	age   int // Cycles since last Update
}

// Update stores a pose measured this cycle
func (c *PoseCache) Update(p Pose) {
	c.pose = p
	c.fresh = true
	c.known = true
	c.age = 0
}

// Invalidate marks the cached pose stale for this cycle, retaining its values
func (c *PoseCache) Invalidate() {
	c.fresh = false
	c.age++
}

// Snapshot returns the cached pose and whether it was measured this cycle
func (c *PoseCache) Snapshot() (Pose, bool) {
	return c.pose, c.fresh
}

// Known reports whether any pose has ever been cached
func (c *PoseCache) Known() bool {
	return c.known
}

// Age returns the number of cycles since the pose was last measured
func (c *PoseCache) Age() int {
	return c.age
}
