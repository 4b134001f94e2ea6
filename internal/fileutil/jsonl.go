package fileutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

func EncodeJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// AppendJSONL appends record as one newline-delimited JSON line, creating
// the file and its directory when absent. The event queue is append-only;
// nothing in the compiler ever rewrites it.
func AppendJSONL(path string, record any) error {
	line, err := EncodeJSONL([]any{record})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
