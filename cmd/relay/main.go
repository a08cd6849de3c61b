package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/rcarmo/go-rdp/internal/config"
	"github.com/rcarmo/go-rdp/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func main() {
	args, action := parseFlags()
	if action != "" {
		return
	}
	if err := run(args); err != nil {
		log.Fatalln(err)
	}
}

type parsedArgs struct {
	host     string
	port     string
	logLevel string
	skipTLS  bool
}

func parseFlags() (parsedArgs, string) {
	return parseFlagsWithArgs(os.Args[1:])
}

func parseFlagsWithArgs(args []string) (parsedArgs, string) {
	fs := flag.NewFlagSet("relay", flag.ContinueOnError)
	hostFlag := fs.String("host", "", "listen host for the relay's own WebSocket endpoint")
	portFlag := fs.String("port", "", "listen port for the relay's own WebSocket endpoint")
	logLevelFlag := fs.String("log-level", "", "log level (debug, info, warn, error)")
	skipTLS := fs.Bool("tls-skip-verify", false, "skip TLS certificate validation against the RDP server")
	helpFlag := fs.Bool("help", false, "show help")

	_ = fs.Parse(args)

	if *helpFlag {
		fs.Usage()
		return parsedArgs{}, "help"
	}

	return parsedArgs{
		host:     strings.TrimSpace(*hostFlag),
		port:     strings.TrimSpace(*portFlag),
		logLevel: strings.TrimSpace(*logLevelFlag),
		skipTLS:  *skipTLS,
	}, ""
}

func run(args parsedArgs) error {
	cfg, err := config.LoadWithOverrides(config.LoadOptions{
		Host:              args.host,
		Port:              args.port,
		LogLevel:          args.logLevel,
		SkipTLSValidation: args.skipTLS,
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.SetLevelFromString(cfg.Logging.Level)

	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.Security.SkipTLSValidation, // #nosec G402 -- opt-in via -tls-skip-verify for lab targets
		ServerName:         cfg.Security.TLSServerName,
		MinVersion:         tls.VersionTLS10,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/relay", func(w http.ResponseWriter, r *http.Request) {
		handleRelay(w, r, tlsConfig)
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logging.Info("relay: listening on %s", addr)
	return http.ListenAndServe(addr, mux) // #nosec G114 -- timeouts are the example client's concern, not this harness's
}

// handleRelay upgrades the HTTP request to a WebSocket, reads one JSON
// sessionRequest, and drives runSession. It reports the connector's Result
// (or the error that stopped it short) back over the socket and closes it;
// proxying fastpath session data afterward is outside this harness's scope.
func handleRelay(w http.ResponseWriter, r *http.Request, tlsConfig *tls.Config) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("relay: upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	var req sessionRequest
	if err := ws.ReadJSON(&req); err != nil {
		logging.Error("relay: reading session request: %v", err)
		return
	}
	if req.Port == "" {
		req.Port = "3389"
	}
	if req.Width == 0 {
		req.Width = 1024
	}
	if req.Height == 0 {
		req.Height = 768
	}

	perConnTLS := tlsConfig.Clone()
	if req.SkipTLSVerify {
		perConnTLS.InsecureSkipVerify = true
	}

	if _, err := runSession(r.Context(), ws, req, perConnTLS); err != nil {
		logging.Error("relay: session failed: %v", err)
		_ = ws.WriteJSON(struct {
			Type  string `json:"type"`
			Error string `json:"error"`
		}{Type: "error", Error: err.Error()})
	}
}
