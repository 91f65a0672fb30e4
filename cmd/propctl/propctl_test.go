package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"propiedades/internal/domain"
	"propiedades/internal/extract"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestProcess_PrintsOneOutcomePerLine(t *testing.T) {
	dump := filepath.Join(t.TempDir(), "dump.json")
	body := `{
	  "b": {"title": "Depto en renta", "description": "Depto en renta $8,500/mes, 2 recámaras, cerca de Plaza Cuernavaca"},
	  "a": {"title": "iPhone 12 en venta, $5,000"}
	}`
	if err := os.WriteFile(dump, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, err := run(t, "process", dump)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	var outs []domain.Outcome
	sc := bufio.NewScanner(strings.NewReader(stdout))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var o domain.Outcome
		if err := json.Unmarshal(sc.Bytes(), &o); err != nil {
			t.Fatalf("line not JSON: %v", err)
		}
		outs = append(outs, o)
	}
	if len(outs) != 2 || outs[0].Rejection == nil || outs[0].Rejection.ID != "a" || outs[1].Record == nil {
		t.Fatalf("outcomes in id order expected, got %+v", outs)
	}
	if !strings.Contains(stderr, "2 listings: 1 accepted, 0 rejected, 1 not listings") {
		t.Fatalf("summary: %q", stderr)
	}

	stdout, _, err = run(t, "process", dump, "--only", "accepted")
	if err != nil || strings.Count(stdout, "\n") != 1 {
		t.Fatalf("filtered output: %v %q", err, stdout)
	}
	if _, _, err := run(t, "process", dump, "--only", "maybe"); err == nil {
		t.Fatalf("expected flag validation error")
	}
}

func TestGateAndPrice(t *testing.T) {
	stdout, _, err := run(t, "gate", "Casa en venta", "3 recámaras, 2 baños, 180 m2 de construcción")
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	var d extract.GateDecision
	if err := json.Unmarshal([]byte(stdout), &d); err != nil || !d.Accepted {
		t.Fatalf("gate decision: %v %+v", err, d)
	}

	stdout, _, err = run(t, "price", "$2,500,000", "--op", "sale")
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	var p domain.ExtractedPrice
	if err := json.Unmarshal([]byte(stdout), &p); err != nil || p.Value == nil || *p.Value != 2_500_000 || !p.IsValid {
		t.Fatalf("price: %v %+v", err, p)
	}
	if _, _, err := run(t, "price", "100", "--op", "lease"); err == nil {
		t.Fatalf("expected --op validation error")
	}
}
