// Package netconn implements the two ways a session reaches the game:
// relay mode (a local helper proxy speaking a trivial line protocol) and
// direct mode (TLS authentication against the session-allocation service,
// then a plain TCP game socket). Both modes converge on the same reader/
// writer goroutine shape and Event channel (spec §4.H, §5).
//
// Grounded on the teacher's network/tcp_client.go connection/readLoop/
// writeLoop shape for relay mode, and verbatim on the reference client's
// eaccess module for direct-mode handshake semantics (obfuscation
// formula, multi-step login, ticket parsing, host/port redirect table).
package netconn

import (
	"bufio"
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// EventKind closes the set of connection-lifecycle notifications.
type EventKind int

const (
	EventConnected EventKind = iota
	EventLine
	EventDisconnected
)

// Event is one item on the channel a Conn delivers to its owner.
type Event struct {
	Kind EventKind
	Line string
}

// Conn is a live connection: a reader goroutine feeding Events and a
// writer goroutine draining Commands, matching spec §5's "no part of the
// core is shared across threads; it is single-owner" model -- the only
// shared state is the two channels.
type Conn struct {
	Events   chan Event
	Commands chan string

	conn net.Conn
	done chan struct{}
}

// Close shuts down the socket, which unblocks both goroutines.
func (c *Conn) Close() error {
	close(c.done)
	return c.conn.Close()
}

// DialRelay connects to a local helper proxy, performs the
// SET_FRONTEND_PID handshake, and starts the reader/writer goroutines.
func DialRelay(ctx Context, host string, port int) (*Conn, error) {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("netconn: dialing relay: %w", err)
	}
	handshake := fmt.Sprintf("SET_FRONTEND_PID %d\n", os.Getpid())
	if _, err := conn.Write([]byte(handshake)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("netconn: sending frontend pid: %w", err)
	}
	return startConn(conn), nil
}

// Context is the narrow subset of context.Context netconn needs, kept
// local so this package doesn't force a stdlib context import on callers
// that only want the simple Dial* entry points in tests.
type Context interface {
	Done() <-chan struct{}
}

func startConn(conn net.Conn) *Conn {
	c := &Conn{
		Events:   make(chan Event, 256),
		Commands: make(chan string, 256),
		conn:     conn,
		done:     make(chan struct{}),
	}
	c.Events <- Event{Kind: EventConnected}
	go c.readLoop()
	go c.writeLoop()
	return c
}

// readLoop reads newline-terminated lines and forwards each as an
// EventLine, exiting on any read error or EOF with EventDisconnected
// (spec §4.H "Any read error or EOF emits a Disconnected event").
func (c *Conn) readLoop() {
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		c.Events <- Event{Kind: EventLine, Line: line}
	}
	select {
	case c.Events <- Event{Kind: EventDisconnected}:
	case <-c.done:
	}
}

// writeLoop drains Commands and writes each verbatim plus a newline,
// exiting on the first write error (spec §4.H "The writer exits on send
// error").
func (c *Conn) writeLoop() {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			if _, err := c.conn.Write([]byte(cmd + "\n")); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// --- Direct mode ----------------------------------------------------

// DirectConfig is what's needed to authenticate and connect directly.
type DirectConfig struct {
	Account   string
	Password  string
	Character string
	GameCode  string
	CertPath  string // path to the pinned eAccess certificate
}

const (
	eaccessHost = "eaccess.play.net"
	eaccessPort = 7910
)

// Ticket is the parsed response to the STORM launch request.
type Ticket struct {
	Key       string
	GameHost  string
	GamePort  int
	Game      string
	Character string
}

// DialDirect authenticates via eAccess and opens the resulting game
// socket, starting the reader/writer goroutines on success.
func DialDirect(cfg DirectConfig) (*Conn, error) {
	ticket, err := authenticate(cfg)
	if err != nil {
		return nil, err
	}
	host, port := fixGameHostPort(ticket.GameHost, ticket.GamePort)
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("netconn: dialing game server: %w", err)
	}
	if err := sendDirectHandshake(conn, ticket); err != nil {
		conn.Close()
		return nil, err
	}
	return startConn(conn), nil
}

func sendDirectHandshake(conn net.Conn, ticket *Ticket) error {
	key := strings.TrimSpace(ticket.Key)
	if _, err := conn.Write([]byte(key + "\n")); err != nil {
		return fmt.Errorf("netconn: sending ticket key: %w", err)
	}
	banner := fmt.Sprintf("/FE:WIZARD /VERSION:1.0.1.22 /P:%s /XML\n", runtime.GOOS)
	if _, err := conn.Write([]byte(banner)); err != nil {
		return fmt.Errorf("netconn: sending client banner: %w", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := conn.Write([]byte("<c>\n")); err != nil {
			return fmt.Errorf("netconn: sending <c>: %w", err)
		}
		time.Sleep(300 * time.Millisecond)
	}
	return nil
}

// authenticate runs the full eAccess handshake: TLS connect (with
// cert-pinning refetch-once-on-failure), key exchange, password
// obfuscation, account login, game-code subscription checks, character
// lookup, and STORM ticket request.
func authenticate(cfg DirectConfig) (*Ticket, error) {
	tlsConn, err := dialPinned(cfg.CertPath)
	if err != nil {
		return nil, fmt.Errorf("netconn: eaccess TLS handshake: %w", err)
	}
	defer tlsConn.Close()

	if err := sendLine(tlsConn, "K"); err != nil {
		return nil, err
	}
	hashKey, err := readResponse(tlsConn)
	if err != nil {
		return nil, err
	}
	obfuscated := ObfuscatePassword(cfg.Password, strings.TrimSpace(hashKey))

	payload := "A\t" + cfg.Account + "\t" + string(obfuscated)
	if err := sendLine(tlsConn, payload); err != nil {
		return nil, err
	}
	authResp, err := readResponse(tlsConn)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(authResp, "KEY") {
		return nil, fmt.Errorf("netconn: authentication failed for account %s: %s", cfg.Account, strings.TrimSpace(authResp))
	}

	for _, prefix := range []string{"F", "G", "P"} {
		if err := sendLine(tlsConn, prefix+"\t"+cfg.GameCode); err != nil {
			return nil, err
		}
		if _, err := readResponse(tlsConn); err != nil {
			return nil, err
		}
	}

	if err := sendLine(tlsConn, "C"); err != nil {
		return nil, err
	}
	charsResp, err := readResponse(tlsConn)
	if err != nil {
		return nil, err
	}
	code, ok := ParseCharacterCode(charsResp, cfg.Character)
	if !ok {
		return nil, fmt.Errorf("netconn: character %q not found in account %q", cfg.Character, cfg.Account)
	}

	if err := sendLine(tlsConn, "L\t"+code+"\tSTORM"); err != nil {
		return nil, err
	}
	launchResp, err := readResponse(tlsConn)
	if err != nil {
		return nil, err
	}
	return ParseLaunchResponse(launchResp)
}

func dialPinned(certPath string) (*tls.Conn, error) {
	addr := net.JoinHostPort(eaccessHost, strconv.Itoa(eaccessPort))

	pinned, err := os.ReadFile(certPath)
	if err != nil {
		pinned, err = fetchCertificate(addr)
		if err != nil {
			return nil, err
		}
		if writeErr := os.WriteFile(certPath, pinned, 0o644); writeErr != nil {
			return nil, fmt.Errorf("netconn: saving pinned certificate: %w", writeErr)
		}
	}

	conn, err := connectWithCert(addr, pinned)
	if err != nil {
		// Refetch once and retry, per spec §4.H step 2.
		refreshed, fetchErr := fetchCertificate(addr)
		if fetchErr != nil {
			return nil, err
		}
		if writeErr := os.WriteFile(certPath, refreshed, 0o644); writeErr != nil {
			return nil, writeErr
		}
		return connectWithCert(addr, refreshed)
	}
	return conn, nil
}

func fetchCertificate(addr string) ([]byte, error) {
	conn, err := tls.Dial("tcp", addr, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		return nil, fmt.Errorf("netconn: fetching eaccess certificate: %w", err)
	}
	defer conn.Close()
	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, fmt.Errorf("netconn: server presented no certificate")
	}
	return pemEncode(certs[0].Raw), nil
}

func connectWithCert(addr string, pemCert []byte) (*tls.Conn, error) {
	cert, err := parsePEM(pemCert)
	if err != nil {
		return nil, err
	}
	conn, err := tls.Dial("tcp", addr, &tls.Config{
		InsecureSkipVerify: true, // manual pin check below, matching the reference client
	})
	if err != nil {
		return nil, err
	}
	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 || !bytes.Equal(certs[0].Raw, cert.Raw) {
		conn.Close()
		return nil, fmt.Errorf("netconn: eaccess certificate does not match pinned copy")
	}
	return conn, nil
}

func pemEncode(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func parsePEM(pemBytes []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("netconn: no PEM block found in pinned certificate")
	}
	return x509.ParseCertificate(block.Bytes)
}

func sendLine(conn *tls.Conn, line string) error {
	_, err := conn.Write([]byte(line + "\n"))
	return err
}

func readResponse(conn *tls.Conn) (string, error) {
	const packetSize = 8192
	buf := make([]byte, packetSize)
	n, err := conn.Read(buf)
	if n == 0 && err != nil {
		return "", fmt.Errorf("netconn: reading eaccess response: %w", err)
	}
	return string(buf[:n]), nil
}

// ObfuscatePassword applies the byte-wise ((pwd-32) XOR hashByte)+32
// transform (spec §4.H step 4), stopping at the shorter of the two
// inputs like the reference implementation's zip.
func ObfuscatePassword(password, hashKey string) []byte {
	pb, hb := []byte(password), []byte(hashKey)
	n := len(pb)
	if len(hb) < n {
		n = len(hb)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		adjusted := int(pb[i]) - 32
		out[i] = byte((adjusted ^ int(hb[i])) + 32)
	}
	return out
}

// ParseCharacterCode extracts the character code for target (case
// insensitive) from a "C" response: fields beyond the first 5 are
// (code, name) pairs.
func ParseCharacterCode(response, target string) (string, bool) {
	trimmed := strings.TrimSpace(response)
	tokens := strings.Split(trimmed, "\t")
	if len(tokens) <= 5 || tokens[0] != "C" {
		return "", false
	}
	for i := 5; i+1 < len(tokens); i += 2 {
		code, name := tokens[i], tokens[i+1]
		if strings.EqualFold(name, target) {
			return code, true
		}
	}
	return "", false
}

// ParseLaunchResponse parses the STORM launch response into a Ticket.
func ParseLaunchResponse(response string) (*Ticket, error) {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, "L") {
		return nil, fmt.Errorf("netconn: unexpected launch response: %s", trimmed)
	}
	payload := strings.TrimPrefix(trimmed, "L\t")
	payload = strings.TrimPrefix(payload, "OK\t")

	values := make(map[string]string)
	for _, pair := range strings.Split(payload, "\t") {
		if k, v, ok := strings.Cut(pair, "="); ok {
			values[strings.ToUpper(k)] = v
		}
	}

	key, ok := values["KEY"]
	if !ok {
		return nil, fmt.Errorf("netconn: launch response missing KEY")
	}
	host, ok := values["GAMEHOST"]
	if !ok {
		return nil, fmt.Errorf("netconn: launch response missing GAMEHOST")
	}
	portStr, ok := values["GAMEPORT"]
	if !ok {
		return nil, fmt.Errorf("netconn: launch response missing GAMEPORT")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("netconn: invalid GAMEPORT value %q: %w", portStr, err)
	}
	character := values["CHARACTER"]
	if character == "" {
		character = "unknown"
	}
	return &Ticket{Key: key, GameHost: host, GamePort: port, Game: values["GAME"], Character: character}, nil
}

// legacyHostPorts maps known-stale eAccess ticket host:ports onto their
// current equivalents (spec §4.H step 9: "closed table of redirects").
var legacyHostPorts = map[string]struct {
	host string
	port int
}{
	"gs-plat.simutronics.net:10121": {"storm.gs4.game.play.net", 10124},
	"gs3.simutronics.net:4900":      {"storm.gs4.game.play.net", 10024},
	"gs4.simutronics.net:10321":     {"storm.gs4.game.play.net", 10324},
	"prime.dr.game.play.net:4901":   {"dr.simutronics.net", 11024},
}

func fixGameHostPort(host string, port int) (string, int) {
	key := strings.ToLower(host) + ":" + strconv.Itoa(port)
	if fixed, ok := legacyHostPorts[key]; ok {
		return fixed.host, fixed.port
	}
	return host, port
}

// GameCodeForName resolves a human game name (e.g. "prime", "shattered")
// to the wire game code eAccess expects, per the reference client's
// game_name_to_code table.
func GameCodeForName(name string) string {
	switch strings.ToLower(name) {
	case "prime", "gs3":
		return "GS3"
	case "platinum", "gsx":
		return "GSX"
	case "shattered", "gsf":
		return "GSF"
	case "test", "gst":
		return "GST"
	case "dr", "drprime":
		return "DR"
	case "drplatinum", "drx":
		return "DRX"
	case "drfallen", "drf":
		return "DRF"
	case "drtest", "drt":
		return "DRT"
	default:
		return "GS3"
	}
}
