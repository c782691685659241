package codec

import (
	"bytes"
	"encoding/json"
)

// Record is one dataset row keyed by header name. Keys keep header order.
type Record struct {
	keys   []string
	values map[string]string
}

func (r *Record) set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// MarshalJSON writes the record as an object in header order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ToRecords zips each row against header by position. Missing cells become "" and
// extra cells are dropped. When a header name repeats, the last column wins.
func ToRecords(header []string, rows [][]string) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		var rec Record
		for i, key := range header {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			rec.set(key, val)
		}
		records = append(records, rec)
	}
	return records
}

// MarshalRecords renders records as pretty JSON with a 2-space indent.
func MarshalRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.MarshalIndent(records, "", "  ")
}
