package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/sessionlock/pkg/codec"
	"github.com/aretw0/sessionlock/pkg/ports"
	"github.com/aretw0/sessionlock/pkg/session"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	formatAuto = "auto"
	formatJSON = "json"
	formatYAML = "yaml"
)

// recordView is the printable form of a session.
type recordView struct {
	Key      string         `json:"key" yaml:"key"`
	Exists   bool           `json:"exists" yaml:"exists"`
	TTL      string         `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	Created  *time.Time     `json:"created,omitempty" yaml:"created,omitempty"`
	Locked   bool           `json:"locked" yaml:"locked"`
	LockID   int64          `json:"lock_id" yaml:"lock_id"`
	LockDate *time.Time     `json:"lock_date,omitempty" yaml:"lock_date,omitempty"`
	LockAge  string         `json:"lock_age,omitempty" yaml:"lock_age,omitempty"`
	Timeout  int            `json:"timeout_minutes" yaml:"timeout_minutes"`
	Flags    string         `json:"flags,omitempty" yaml:"flags,omitempty"`
	Items    map[string]any `json:"items,omitempty" yaml:"items,omitempty"`
	Problem  string         `json:"problem,omitempty" yaml:"problem,omitempty"`
}

func snapshotView(snap session.Snapshot, r *codec.Redactor) recordView {
	v := recordView{Key: snap.Key, Exists: snap.Exists}
	if snap.Exists {
		v.TTL = snap.TTL.String()
	}
	if snap.Problem != nil {
		v.Problem = snap.Problem.Error()
	}
	if rec := snap.Record; rec != nil {
		v.Created = &rec.Created
		v.Locked = rec.Locked
		v.LockID = rec.LockID
		if !rec.LockDate.IsZero() {
			v.LockDate = &rec.LockDate
		}
		v.Timeout = rec.Timeout
		v.Flags = rec.Flags.String()
		v.Items = r.Redact(rec.Items)
	}
	return v
}

func resultView(key string, res ports.ItemResult, r *codec.Redactor) recordView {
	v := recordView{
		Key:     key,
		Exists:  res.Found,
		Locked:  res.Locked,
		LockID:  res.LockID,
		Timeout: res.Timeout,
		Flags:   res.Actions.String(),
		Items:   r.Redact(res.Items),
	}
	if res.Locked {
		v.LockAge = res.LockAge.Round(time.Second).String()
	}
	return v
}

// redactor builds the payload redactor from the --redact and --reveal flags.
func redactor(cmd *cobra.Command) (*codec.Redactor, error) {
	if reveal, _ := cmd.Flags().GetBool("reveal"); reveal {
		return codec.NewRedactor(nil)
	}
	patterns, _ := cmd.Flags().GetStringSlice("redact")
	return codec.NewRedactor(patterns)
}

// resolveFormat picks YAML for terminals and JSON otherwise when format is auto.
func resolveFormat(format string, w io.Writer) (string, error) {
	switch format {
	case formatJSON, formatYAML:
		return format, nil
	case formatAuto, "":
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return formatYAML, nil
		}
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want auto, json or yaml)", format)
	}
}

func printValue(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("output")
	w := cmd.OutOrStdout()
	format, err := resolveFormat(format, w)
	if err != nil {
		return err
	}

	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// status renders a short state label, colored when stdout supports it.
func status(label string, ok bool) string {
	p := termenv.ColorProfile()
	color := "#22c55e"
	if !ok {
		color = "#f43f5e"
	}
	return termenv.String(label).Foreground(p.Color(color)).Bold().String()
}
