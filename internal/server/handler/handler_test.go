package handler

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/bates64/vscode-star-rod/internal/engine"
	"github.com/bates64/vscode-star-rod/internal/lang/directive"
	"github.com/bates64/vscode-star-rod/internal/lang/lib"
)

func fixtureEngine(t *testing.T) *engine.Engine {
	t.Helper()
	root := t.TempDir()
	libFile := filepath.Join(root, "common.lib")
	content := `{scope=common}
api : 802C0000 : : $RandInt : int max
`
	if err := os.WriteFile(libFile, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return engine.New(engine.Config{DatabaseDir: root})
}

func dialTestServer(t *testing.T) *websocket.Conn {
	t.Helper()
	h := New(fixtureEngine(t), nil)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msgType, id string, payload interface{}) Response {
	t.Helper()

	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		raw = data
	}
	if err := conn.WriteJSON(Message{Type: msgType, ID: id, Payload: raw}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return resp
}

func TestPing(t *testing.T) {
	conn := dialTestServer(t)

	resp := roundTrip(t, conn, "ping", "1", nil)
	if resp.Type != "pong" {
		t.Errorf("Type = %q, expected pong", resp.Type)
	}
	if resp.ID != "1" {
		t.Errorf("ID = %q, expected the request ID echoed", resp.ID)
	}
}

func TestDocumentDirectivesRoundTrip(t *testing.T) {
	conn := dialTestServer(t)

	open := roundTrip(t, conn, "document.open", "1", DocumentPayload{
		Path:     "/mod/map/patch/area.mpat",
		Text:     "#new:Script $Main {\n0\n}\n",
		Revision: 1,
	})
	if open.Type != "document.open" {
		t.Fatalf("open response = %+v", open)
	}

	resp := roundTrip(t, conn, "document.directives", "2", PathPayload{Path: "/mod/map/patch/area.mpat"})
	if resp.Type != "document.directives" {
		t.Fatalf("directives response = %+v", resp)
	}

	data, err := json.Marshal(resp.Payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var directives []*directive.Directive
	if err := json.Unmarshal(data, &directives); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(directives) != 1 {
		t.Fatalf("len(directives) = %d, expected 1", len(directives))
	}
	if directives[0].Keyword != "new" || directives[0].Name() != "$Main" {
		t.Errorf("directive = %+v", directives[0])
	}
}

func TestDocumentSymbolsIncludeDatabase(t *testing.T) {
	conn := dialTestServer(t)

	roundTrip(t, conn, "document.open", "1", DocumentPayload{
		Path:     "/mod/map/patch/area.mpat",
		Text:     "#new:Script $Local {\n0\n}\n",
		Revision: 1,
	})

	resp := roundTrip(t, conn, "document.symbols", "2", PathPayload{Path: "/mod/map/patch/area.mpat"})
	if resp.Type != "document.symbols" {
		t.Fatalf("symbols response = %+v", resp)
	}

	data, err := json.Marshal(resp.Payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var entries []*lib.LibraryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	if !names["$RandInt"] {
		t.Error("database symbol $RandInt missing from the resolved list")
	}
	if !names["$Local"] {
		t.Error("local declaration $Local missing from the resolved list")
	}
}

func TestSymbolLookup(t *testing.T) {
	conn := dialTestServer(t)

	roundTrip(t, conn, "document.open", "1", DocumentPayload{
		Path:     "/mod/map/patch/area.mpat",
		Text:     "",
		Revision: 1,
	})

	resp := roundTrip(t, conn, "symbol.lookup", "2", LookupPayload{
		Path: "/mod/map/patch/area.mpat",
		Name: "$RandInt",
	})
	if resp.Type != "symbol.lookup" {
		t.Fatalf("lookup response = %+v", resp)
	}

	missing := roundTrip(t, conn, "symbol.lookup", "3", LookupPayload{
		Path: "/mod/map/patch/area.mpat",
		Name: "$DoesNotExist",
	})
	if missing.Type != "error" {
		t.Errorf("missing lookup response type = %q, expected error", missing.Type)
	}
}

func TestStaleRevisionRejected(t *testing.T) {
	conn := dialTestServer(t)

	roundTrip(t, conn, "document.open", "1", DocumentPayload{
		Path: "/doc.mpat", Text: "a", Revision: 5,
	})
	resp := roundTrip(t, conn, "document.update", "2", DocumentPayload{
		Path: "/doc.mpat", Text: "b", Revision: 5,
	})

	if resp.Type != "error" {
		t.Fatalf("Type = %q, expected error", resp.Type)
	}
	data, _ := json.Marshal(resp.Payload)
	var ep ErrorPayload
	if err := json.Unmarshal(data, &ep); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if ep.Code != "STALE_REVISION" {
		t.Errorf("Code = %q, expected STALE_REVISION", ep.Code)
	}
}

func TestUnknownRequestType(t *testing.T) {
	conn := dialTestServer(t)

	resp := roundTrip(t, conn, "document.rename", "1", nil)
	if resp.Type != "error" {
		t.Fatalf("Type = %q, expected error", resp.Type)
	}
	data, _ := json.Marshal(resp.Payload)
	var ep ErrorPayload
	if err := json.Unmarshal(data, &ep); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if ep.Code != "UNKNOWN_REQUEST" {
		t.Errorf("Code = %q, expected UNKNOWN_REQUEST", ep.Code)
	}
}

func TestDatabaseStats(t *testing.T) {
	conn := dialTestServer(t)

	resp := roundTrip(t, conn, "database.stats", "1", nil)
	if resp.Type != "database.stats" {
		t.Fatalf("stats response = %+v", resp)
	}

	data, _ := json.Marshal(resp.Payload)
	var stats engine.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if stats.Database.Entries != 1 {
		t.Errorf("Database.Entries = %d, expected 1", stats.Database.Entries)
	}
}
