package sync

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// compressResults сериализует результаты в JSON, сжимает gzip и кодирует base64
func compressResults(results map[string]*CollectionResult) (string, error) {
	raw, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("gzip results: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("gzip results: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecompressResults обратная операция к сжатию ответа
func DecompressResults(payload string) (map[string]*CollectionResult, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer zr.Close()

	var results map[string]*CollectionResult
	if err := json.NewDecoder(zr).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return results, nil
}
