package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"cjb-incidents/core/incidents"
)

var (
	ErrEmptyFile         = errors.New("feed: no data rows")
	ErrUnsupportedFormat = errors.New("feed: unsupported file format")
	ErrMalformedSnapshot = errors.New("feed: malformed snapshot")
)

// Snapshot is the bulk JSON feed: the producer writes it, the dashboard and
// the feed service read it.
type Snapshot struct {
	LastUpdate time.Time          `json:"lastUpdate"`
	Count      int                `json:"count"`
	Data       []incidents.RawRow `json:"data"`
}

func NewSnapshot(rows []incidents.RawRow, now time.Time) Snapshot {
	if rows == nil {
		rows = []incidents.RawRow{}
	}
	return Snapshot{LastUpdate: now.UTC(), Count: len(rows), Data: rows}
}

// Encode writes the snapshot as indented JSON.
func (s Snapshot) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(s)
}

// DecodeSnapshot accepts either a snapshot object (anything with a "data"
// array, including the feed service response) or a bare array of row objects.
// Scalar cell values of any JSON type are rendered as text.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, err
	}
	raw = bytes.TrimSpace(bytes.TrimPrefix(raw, utf8BOM))
	if len(raw) == 0 {
		return Snapshot{}, ErrEmptyFile
	}

	var rows []map[string]any
	var snap Snapshot
	if raw[0] == '[' {
		if err := unmarshalNumbers(raw, &rows); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
	} else {
		var envelope struct {
			LastUpdate string           `json:"lastUpdate"`
			Data       []map[string]any `json:"data"`
		}
		if err := unmarshalNumbers(raw, &envelope); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		if envelope.Data == nil {
			return Snapshot{}, fmt.Errorf("%w: missing data array", ErrMalformedSnapshot)
		}
		if t, err := time.Parse(time.RFC3339Nano, envelope.LastUpdate); err == nil {
			snap.LastUpdate = t
		}
		rows = envelope.Data
	}

	snap.Data = make([]incidents.RawRow, 0, len(rows))
	for _, obj := range rows {
		row := make(incidents.RawRow, len(obj))
		for k, v := range obj {
			row[k] = cellText(v)
		}
		snap.Data = append(snap.Data, row)
	}
	snap.Count = len(snap.Data)
	return snap, nil
}

func unmarshalNumbers(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(b))
	}
}
