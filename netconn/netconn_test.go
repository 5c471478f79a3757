package netconn

import "testing"

func TestObfuscatePassword(t *testing.T) {
	out := ObfuscatePassword("secret", "ABCDEF")
	if len(out) != len("secret") {
		t.Fatalf("len(out) = %d, want %d", len(out), len("secret"))
	}
	// Decoding should recover the original password byte-for-byte, since
	// the transform is its own inverse under XOR.
	hb := []byte("ABCDEF")
	for i, b := range out {
		adjusted := int(b) - 32
		recovered := byte((adjusted ^ int(hb[i])) + 32)
		if recovered != "secret"[i] {
			t.Fatalf("byte %d: recovered %q, want %q", i, recovered, "secret"[i])
		}
	}
}

func TestObfuscatePasswordEmpty(t *testing.T) {
	if out := ObfuscatePassword("", "ABCDEF"); len(out) != 0 {
		t.Fatalf("expected empty output, got %v", out)
	}
}

func TestObfuscatePasswordStopsAtShorterHashKey(t *testing.T) {
	out := ObfuscatePassword("longpassword", "AB")
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestParseCharacterCodeFound(t *testing.T) {
	resp := "C\t0\t0\t0\t0\t1001\tGandalf\t1002\tSaruman"
	code, ok := ParseCharacterCode(resp, "Saruman")
	if !ok || code != "1002" {
		t.Fatalf("code = %q, ok = %v, want 1002/true", code, ok)
	}
}

func TestParseCharacterCodeCaseInsensitive(t *testing.T) {
	resp := "C\t0\t0\t0\t0\t1001\tGandalf"
	code, ok := ParseCharacterCode(resp, "gandalf")
	if !ok || code != "1001" {
		t.Fatalf("code = %q, ok = %v, want 1001/true", code, ok)
	}
}

func TestParseCharacterCodeNotFound(t *testing.T) {
	resp := "C\t0\t0\t0\t0\t1001\tGandalf"
	if _, ok := ParseCharacterCode(resp, "Frodo"); ok {
		t.Fatal("expected not found")
	}
}

func TestParseCharacterCodeInvalidPrefix(t *testing.T) {
	resp := "X\t0\t0\t0\t0\t1001\tGandalf"
	if _, ok := ParseCharacterCode(resp, "Gandalf"); ok {
		t.Fatal("expected rejection of non-C response")
	}
}

func TestParseCharacterCodeInsufficientFields(t *testing.T) {
	resp := "C\t0\t0"
	if _, ok := ParseCharacterCode(resp, "Gandalf"); ok {
		t.Fatal("expected rejection of short response")
	}
}

func TestParseCharacterCodeTrimsWhitespace(t *testing.T) {
	resp := "C\t0\t0\t0\t0\t1001\tGandalf\r\n"
	code, ok := ParseCharacterCode(resp, "Gandalf")
	if !ok || code != "1001" {
		t.Fatalf("code = %q, ok = %v, want 1001/true", code, ok)
	}
}

func TestParseLaunchResponseValid(t *testing.T) {
	resp := "L\tOK\tKEY=abc123\tGAMEHOST=storm.example.net\tGAMEPORT=10024\tGAME=GS3\tCHARACTER=Gandalf\n"
	ticket, err := ParseLaunchResponse(resp)
	if err != nil {
		t.Fatal(err)
	}
	if ticket.Key != "abc123" || ticket.GameHost != "storm.example.net" || ticket.GamePort != 10024 ||
		ticket.Game != "GS3" || ticket.Character != "Gandalf" {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}
}

func TestParseLaunchResponseMissingOptionalFields(t *testing.T) {
	resp := "L\tKEY=abc123\tGAMEHOST=storm.example.net\tGAMEPORT=10024\n"
	ticket, err := ParseLaunchResponse(resp)
	if err != nil {
		t.Fatal(err)
	}
	if ticket.Game != "" || ticket.Character != "unknown" {
		t.Fatalf("unexpected defaults: %+v", ticket)
	}
}

func TestParseLaunchResponseCaseInsensitiveKeys(t *testing.T) {
	resp := "L\tkey=abc123\tgamehost=storm.example.net\tgameport=10024\n"
	ticket, err := ParseLaunchResponse(resp)
	if err != nil {
		t.Fatal(err)
	}
	if ticket.Key != "abc123" || ticket.GameHost != "storm.example.net" || ticket.GamePort != 10024 {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}
}

func TestParseLaunchResponseMissingKey(t *testing.T) {
	resp := "L\tGAMEHOST=storm.example.net\tGAMEPORT=10024\n"
	if _, err := ParseLaunchResponse(resp); err == nil {
		t.Fatal("expected error for missing KEY")
	}
}

func TestParseLaunchResponseMissingGameHost(t *testing.T) {
	resp := "L\tKEY=abc123\tGAMEPORT=10024\n"
	if _, err := ParseLaunchResponse(resp); err == nil {
		t.Fatal("expected error for missing GAMEHOST")
	}
}

func TestParseLaunchResponseMissingGamePort(t *testing.T) {
	resp := "L\tKEY=abc123\tGAMEHOST=storm.example.net\n"
	if _, err := ParseLaunchResponse(resp); err == nil {
		t.Fatal("expected error for missing GAMEPORT")
	}
}

func TestParseLaunchResponseInvalidPort(t *testing.T) {
	resp := "L\tKEY=abc123\tGAMEHOST=storm.example.net\tGAMEPORT=notanumber\n"
	if _, err := ParseLaunchResponse(resp); err == nil {
		t.Fatal("expected error for invalid GAMEPORT")
	}
}

func TestParseLaunchResponseInvalidPrefix(t *testing.T) {
	resp := "X\tKEY=abc123\n"
	if _, err := ParseLaunchResponse(resp); err == nil {
		t.Fatal("expected error for non-L response")
	}
}

func TestFixGameHostPortKnownRedirects(t *testing.T) {
	cases := []struct {
		host     string
		port     int
		wantHost string
		wantPort int
	}{
		{"gs-plat.simutronics.net", 10121, "storm.gs4.game.play.net", 10124},
		{"gs3.simutronics.net", 4900, "storm.gs4.game.play.net", 10024},
		{"gs4.simutronics.net", 10321, "storm.gs4.game.play.net", 10324},
		{"prime.dr.game.play.net", 4901, "dr.simutronics.net", 11024},
	}
	for _, c := range cases {
		host, port := fixGameHostPort(c.host, c.port)
		if host != c.wantHost || port != c.wantPort {
			t.Fatalf("fixGameHostPort(%q, %d) = %q, %d; want %q, %d", c.host, c.port, host, port, c.wantHost, c.wantPort)
		}
	}
}

func TestFixGameHostPortUnknownPassthrough(t *testing.T) {
	host, port := fixGameHostPort("unknown.example.net", 9999)
	if host != "unknown.example.net" || port != 9999 {
		t.Fatalf("fixGameHostPort passthrough = %q, %d", host, port)
	}
}

func TestFixGameHostPortCaseInsensitive(t *testing.T) {
	host, port := fixGameHostPort("GS3.SIMUTRONICS.NET", 4900)
	if host != "storm.gs4.game.play.net" || port != 10024 {
		t.Fatalf("fixGameHostPort case-insensitive = %q, %d", host, port)
	}
}

func TestFixGameHostPortWrongPortForKnownHost(t *testing.T) {
	host, port := fixGameHostPort("gs3.simutronics.net", 9999)
	if host != "gs3.simutronics.net" || port != 9999 {
		t.Fatalf("fixGameHostPort should only redirect on exact host:port match, got %q, %d", host, port)
	}
}

func TestGameCodeForName(t *testing.T) {
	cases := map[string]string{
		"prime":     "GS3",
		"Shattered": "GSF",
		"dr":        "DR",
		"unknown":   "GS3",
	}
	for name, want := range cases {
		if got := GameCodeForName(name); got != want {
			t.Fatalf("GameCodeForName(%q) = %q, want %q", name, got, want)
		}
	}
}
