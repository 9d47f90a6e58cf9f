package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"marketreplay/types"
)

const csvTimeLayout = "2006-01-02 15:04:05"

type csvBar struct {
	Datetime string          `csv:"datetime"`
	Open     decimal.Decimal `csv:"open"`
	High     decimal.Decimal `csv:"high"`
	Low      decimal.Decimal `csv:"low"`
	Close    decimal.Decimal `csv:"close"`
	Volume   decimal.Decimal `csv:"volume"`
}

// NewFromCSV loads <symbol>.csv for every symbol from dir and builds a feed.
// Rows that fail to parse are skipped; a market event is never constructed
// from a malformed row.
func NewFromCSV(queue EventQueue, dir string, symbols []string) (*Feed, error) {
	var bars []types.Bar
	for _, sym := range symbols {
		path := filepath.Join(dir, sym+".csv")
		rows, err := loadCSV(path)
		if err != nil {
			return nil, fmt.Errorf("load bars for %s: %w", sym, err)
		}
		for _, row := range rows {
			ts, err := time.Parse(csvTimeLayout, row.Datetime)
			if err != nil {
				log.WithFields(log.Fields{
					"symbol":   sym,
					"datetime": row.Datetime,
				}).Warn("skipping malformed bar row")
				continue
			}
			bars = append(bars, types.Bar{
				Symbol:    sym,
				Open:      row.Open,
				High:      row.High,
				Low:       row.Low,
				Close:     row.Close,
				Volume:    row.Volume,
				Timestamp: ts,
			})
		}
	}
	return New(queue, bars), nil
}

func loadCSV(path string) ([]csvBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
