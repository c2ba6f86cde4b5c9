package dataprep

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"divergence-lab/internal/domain"
)

// candleHeader is the expected CSV column layout.
var candleHeader = []string{"timestamp_ms", "open", "high", "low", "close", "volume"}

// LoadCandlesCSV reads OHLCV bars for one symbol from a CSV file with
// header timestamp_ms,open,high,low,close,volume.
func LoadCandlesCSV(path, symbol string) ([]*domain.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candle file: %w", err)
	}
	defer f.Close()

	candles, err := ReadCandles(f, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return candles, nil
}

// ReadCandles parses candle CSV rows from r.
func ReadCandles(r io.Reader, symbol string) ([]*domain.Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(candleHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range candleHeader {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected header column %d: got %q, want %q", i, header[i], want)
		}
	}

	var candles []*domain.Candle
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		c, err := parseCandle(rec, symbol)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func parseCandle(rec []string, symbol string) (*domain.Candle, error) {
	ts, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("timestamp_ms: %w", err)
	}
	fields := make([]float64, 5)
	for i, name := range candleHeader[1:] {
		fields[i], err = strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return &domain.Candle{
		Symbol:      symbol,
		TimestampMs: ts,
		Open:        fields[0],
		High:        fields[1],
		Low:         fields[2],
		Close:       fields[3],
		Volume:      fields[4],
	}, nil
}
