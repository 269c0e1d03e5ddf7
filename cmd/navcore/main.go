package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/lixenwraith/navcore/core"
)

const (
	logDir      = "logs"
	logFileName = "navcore.log"
	maxLogSize  = 10 * 1024 * 1024
)

var (
	configFlag   = flag.String("config", "", "Configuration file (default navcore.toml when present)")
	simFlag      = flag.Bool("sim", false, "Ignore the serial port and drive the simulated robot only")
	debugFlag    = flag.Bool("debug", false, "Write logs to logs/navcore.log and echo telemetry to the log")
	targetFlag   = flag.String("target", "", "Override navigation.target (BLUE_NEAR, RED_FAR, BLUE_FAR, RED_NEAR)")
	timeoutFlag  = flag.Duration("timeout", 0, "Override navigation.timeout")
	findFlag     = flag.String("find", "", "Override navigation.find_method (APPROACH_STRAIGHT, ROTATE_LEFT, ROTATE_RIGHT)")
	headlessFlag = flag.Bool("headless", false, "Run without the console; the mission starts immediately and the process exits when it ends")
	teleopFlag   = flag.Bool("teleop", false, "Drive manually from the console instead of running the mission")
	dumpFlag     = flag.Bool("dump-config", false, "Print the effective configuration and exit")
)

// errMissionFailed is returned by a headless run whose mission did not succeed
var errMissionFailed = errors.New("mission failed")

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	logFile := setupLogging(*debugFlag)

	code := 0
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "navcore: %v\n", err)
		code = 1
	}
	if logFile != nil {
		logFile.Close()
	}
	os.Exit(code)
}

// setupLogging routes the standard logger to logs/navcore.log when debug is set,
// rotating a file larger than maxLogSize; otherwise log output is discarded
// Never logs to stdout or stderr, which belong to the console
func setupLogging(debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("navcore-%s.log", time.Now().Format("20060102-150405")))
		if err := os.Rename(logPath, rotated); err != nil {
			log.SetOutput(io.Discard)
			return nil
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("navcore: logging started")
	return f
}
