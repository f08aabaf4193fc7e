package cli

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/beaconhq/beacon/internal/mcp"
)

var serveLogFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long: `Run Beacon as an MCP (Model Context Protocol) server, speaking
line-delimited JSON-RPC over stdin/stdout. Intended to be launched by an
AI assistant, not run interactively.

Stdout carries only protocol traffic; diagnostics go to stderr, or to a
rotating log file when --log-file is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := serveLogger()
		server := mcp.NewServer(newHandler(), logger)
		return server.Run()
	},
}

// serveLogger returns the MCP diagnostic logger. Stdout is off limits in
// serve mode, so logs go to stderr, plus a rotating file when requested.
func serveLogger() *log.Logger {
	var w io.Writer = os.Stderr
	if serveLogFile != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   serveLogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
		})
	}
	return log.New(w, "[beacon-mcp] ", log.LstdFlags)
}

func init() {
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Also write server logs to this file (rotated)")
	rootCmd.AddCommand(serveCmd)
}
