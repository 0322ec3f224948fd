package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListCadets(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/cadets", nil))
	assertStatusCode(t, rec, http.StatusOK)
	if cadets := decodeList(t, rec); len(cadets) != 0 {
		t.Errorf("expected empty roster, got %d", len(cadets))
	}

	seedCadets(t, env)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/cadets", nil))
	assertStatusCode(t, rec, http.StatusOK)
	cadets := decodeList(t, rec)
	if len(cadets) != 3 {
		t.Fatalf("expected 3 cadets, got %d", len(cadets))
	}
	first := cadets[0].(map[string]any)
	if first["enrollment_id"] != "EN-001" || first["name"] != "Alpha" {
		t.Errorf("unexpected first cadet: %v", first)
	}
}

func TestStrength(t *testing.T) {
	env := newTestEnv(t)
	seedCadets(t, env)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/strength", nil))
	assertStatusCode(t, rec, http.StatusOK)
	body := decodeBody(t, rec)

	if body["total"] != float64(3) {
		t.Errorf("expected total 3, got %v", body["total"])
	}
	breakdown := body["breakdown"].([]any)
	if len(breakdown) != 3 {
		t.Fatalf("expected 3 year rows, got %d", len(breakdown))
	}

	// Seniors first.
	for i, expected := range []string{"3rd Year", "2nd Year", "1st Year"} {
		row := breakdown[i].(map[string]any)
		if row["Year"] != expected {
			t.Errorf("row %d: expected %s, got %v", i, expected, row["Year"])
		}
	}
	third := breakdown[0].(map[string]any)
	if third["SD"] != float64(1) || third["SW"] != float64(0) || third["Total"] != float64(1) {
		t.Errorf("unexpected 3rd year row: %v", third)
	}
}
