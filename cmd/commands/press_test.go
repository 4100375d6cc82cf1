package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dohr-michael/calcpad/internal/calc"
)

func sampleOutput(t *testing.T) pressOutput {
	t.Helper()
	keys, err := calc.ParseKeys("12*4=")
	if err != nil {
		t.Fatalf("ParseKeys: %v", err)
	}
	state := calc.State{}.Press(keys...)
	return pressOutput{Display: state.Display(), State: state}
}

func TestWriteOutputText(t *testing.T) {
	var buf bytes.Buffer
	if err := writeOutput(&buf, sampleOutput(t), "text"); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}
	if got := buf.String(); got != "48\n" {
		t.Errorf("text output = %q, want %q", got, "48\n")
	}
}

func TestWriteOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeOutput(&buf, sampleOutput(t), "JSON"); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}

	var got pressOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if got.Display != "48" || got.State.First != "48" || got.State.Result != "48" {
		t.Errorf("json output = %+v", got)
	}
	if strings.Contains(buf.String(), "pad_id") {
		t.Errorf("local output should omit pad_id: %s", buf.String())
	}
}

func TestWriteOutputYAML(t *testing.T) {
	out := sampleOutput(t)
	out.PadID = "pad_1234abcd"

	var buf bytes.Buffer
	if err := writeOutput(&buf, out, "yaml"); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if got["pad_id"] != "pad_1234abcd" {
		t.Errorf("pad_id = %v", got["pad_id"])
	}
	if got["display"] != "48" {
		t.Errorf("display = %v", got["display"])
	}
}

func TestWriteOutputUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := writeOutput(&buf, sampleOutput(t), "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
