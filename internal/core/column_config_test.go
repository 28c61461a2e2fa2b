package core

import (
	"encoding/json"
	"testing"
)

func TestColumnConfig_JSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"null", `null`, `null`},
		{"empty object", `{}`, `null`},
		{"choices and default", `{"default_value":"a","choices":["a","b"]}`, `{"choices":["a","b"],"default_value":"a"}`},
		{"unknown keys kept", `{"max":5,"choices":["x"],"color":"red"}`, `{"choices":["x"],"color":"red","max":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg ColumnConfig
			if err := json.Unmarshal([]byte(tt.in), &cfg); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			out, err := json.Marshal(cfg)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("round trip %s = %s, want %s", tt.in, out, tt.want)
			}
		})
	}
}

func TestColumnConfig_InvalidChoices(t *testing.T) {
	var cfg ColumnConfig
	if err := json.Unmarshal([]byte(`{"choices":"a,b"}`), &cfg); err == nil {
		t.Error("Unmarshal() accepted non-array choices")
	}
}
