package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	sentrypkg "github.com/kastheco/glrhs/internal/sentry"
)

var (
	WarningLog *log.Logger
	InfoLog    *log.Logger
	ErrorLog   *log.Logger
)

var (
	logFileName       = filepath.Join(os.TempDir(), "glrhs.log")
	popoutLogFileName = filepath.Join(os.TempDir(), "glrhs-popout.log")

	// activeLogFile is the file the last Initialize opened.
	activeLogFile string
)

var globalLogFile *os.File

// Initialize should be called once at the beginning of the program to set up logging.
// popout selects a separate log file so the main window and a popout window do not
// interleave writes. When telemetry is passed and true, every logger is teed through
// the sentry writer.
func Initialize(popout bool, telemetry ...bool) {
	activeLogFile = logFileName
	if popout {
		activeLogFile = popoutLogFileName
	}
	f, err := os.OpenFile(activeLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		panic(fmt.Sprintf("could not open log file: %s", err))
	}

	var out io.Writer = f
	tee := len(telemetry) > 0 && telemetry[0]

	fmtS := "%s"
	if popout {
		fmtS = "[POPOUT] %s"
	}

	InfoLog = log.New(writerFor(out, sentrypkg.LevelInfo, tee), fmt.Sprintf(fmtS, "INFO:"), log.Ldate|log.Ltime|log.Lshortfile)
	WarningLog = log.New(writerFor(out, sentrypkg.LevelWarning, tee), fmt.Sprintf(fmtS, "WARNING:"), log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(writerFor(out, sentrypkg.LevelError, tee), fmt.Sprintf(fmtS, "ERROR:"), log.Ldate|log.Ltime|log.Lshortfile)

	globalLogFile = f
}

func writerFor(out io.Writer, level sentrypkg.Level, tee bool) io.Writer {
	if !tee {
		return out
	}
	return sentrypkg.NewWriter(out, level)
}

// Close flushes and closes the log file. Safe to call when Initialize was never called.
func Close() {
	if globalLogFile == nil {
		return
	}
	_ = globalLogFile.Close()
	globalLogFile = nil
	fmt.Println("wrote logs to " + activeLogFile)
}

// Discard points every logger at io.Discard. Tests use it instead of Initialize.
func Discard() {
	InfoLog = log.New(io.Discard, "", 0)
	WarningLog = log.New(io.Discard, "", 0)
	ErrorLog = log.New(io.Discard, "", 0)
}

func init() {
	// Loggers must never be nil, even before Initialize runs.
	Discard()
}
