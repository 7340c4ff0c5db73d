// Package simtable loads the process-wide SIM credential table, grounded
// on original_source/qcore/src/data/sims.rs's load_sims_file, re-expressed
// in YAML (this corpus's one config serialisation format, see SPEC_FULL.md)
// rather than TOML.
package simtable

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Creds is one subscriber's long-term key material.
type Creds struct {
	KI  [16]byte
	OPc [16]byte
}

// Table maps a 15-digit IMSI to its credentials.
type Table map[string]Creds

type rawCreds struct {
	KI  string `yaml:"ki"`
	OPc string `yaml:"opc"`
}

// Load reads a YAML file of `imsi-<15 digits>` keys with hex-encoded `ki`
// and `opc` fields, per spec.md §6. Entries lacking the `imsi-` prefix are
// rejected.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("simtable: read %q: %w", path, err)
	}

	var raw map[string]rawCreds
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("simtable: parse %q: %w", path, err)
	}

	table := make(Table, len(raw))
	for key, v := range raw {
		imsi, ok := strings.CutPrefix(key, "imsi-")
		if !ok {
			return nil, fmt.Errorf("simtable: key %q in %q does not start with %q", key, path, "imsi-")
		}

		ki, err := decodeKey(v.KI, "ki", imsi)
		if err != nil {
			return nil, err
		}
		opc, err := decodeKey(v.OPc, "opc", imsi)
		if err != nil {
			return nil, err
		}
		table[imsi] = Creds{KI: ki, OPc: opc}
	}
	return table, nil
}

func decodeKey(hexStr, field, imsi string) ([16]byte, error) {
	var out [16]byte
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return out, fmt.Errorf("simtable: decoding %s for imsi-%s: %w", field, imsi, err)
	}
	if len(b) != 16 {
		return out, fmt.Errorf("simtable: %s for imsi-%s must be 16 bytes, got %d", field, imsi, len(b))
	}
	copy(out[:], b)
	return out, nil
}
