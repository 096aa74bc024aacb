// Package export writes scored indicator rows to columnar files.
package export

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"StockSignal/internal/model"
)

// ScoredPoint is the parquet schema of one scored bar. Undefined indicator
// values are written as NaN.
type ScoredPoint struct {
	Symbol      string  `parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Timestamp   int64   `parquet:"name=timestamp, type=INT64, encoding=DELTA_BINARY_PACKED"`
	Date        string  `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Open        float64 `parquet:"name=open, type=DOUBLE, encoding=PLAIN"`
	High        float64 `parquet:"name=high, type=DOUBLE, encoding=PLAIN"`
	Low         float64 `parquet:"name=low, type=DOUBLE, encoding=PLAIN"`
	Close       float64 `parquet:"name=close, type=DOUBLE, encoding=PLAIN"`
	Volume      float64 `parquet:"name=volume, type=DOUBLE, encoding=PLAIN"`
	MAShort     float64 `parquet:"name=ma_short, type=DOUBLE, encoding=PLAIN"`
	MALong      float64 `parquet:"name=ma_long, type=DOUBLE, encoding=PLAIN"`
	RSI         float64 `parquet:"name=rsi, type=DOUBLE, encoding=PLAIN"`
	BBUpper     float64 `parquet:"name=bb_upper, type=DOUBLE, encoding=PLAIN"`
	BBLower     float64 `parquet:"name=bb_lower, type=DOUBLE, encoding=PLAIN"`
	VolumeSpike bool    `parquet:"name=volume_spike, type=BOOLEAN"`
	Support     float64 `parquet:"name=support, type=DOUBLE, encoding=PLAIN"`
	Resistance  float64 `parquet:"name=resistance, type=DOUBLE, encoding=PLAIN"`
	ATR         float64 `parquet:"name=atr, type=DOUBLE, encoding=PLAIN"`
	Score       int32   `parquet:"name=score, type=INT32"`
}

func toPoint(symbol string, r *model.ScoredRow) ScoredPoint {
	return ScoredPoint{
		Symbol:      symbol,
		Timestamp:   r.Time.Unix(),
		Date:        r.Time.Format("2006-01-02"),
		Open:        r.Open,
		High:        r.High,
		Low:         r.Low,
		Close:       r.Close,
		Volume:      r.Volume,
		MAShort:     r.MAShort,
		MALong:      r.MALong,
		RSI:         r.RSI,
		BBUpper:     r.BBUpper,
		BBLower:     r.BBLower,
		VolumeSpike: r.VolumeSpike,
		Support:     r.Support,
		Resistance:  r.Resistance,
		ATR:         r.ATR,
		Score:       int32(r.Score),
	}
}

// WriteScoredRows writes rows to filename as a GZIP compressed parquet file.
func WriteScoredRows(filename, symbol string, rows []model.ScoredRow) error {
	fw, err := local.NewLocalFileWriter(filename)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(ScoredPoint), 4)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_GZIP
	pw.PageSize = 8 * 1024

	for i := range rows {
		if err := pw.Write(toPoint(symbol, &rows[i])); err != nil {
			return fmt.Errorf("failed to write parquet data: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	logrus.WithFields(logrus.Fields{"rows": len(rows), "file": filename}).Info("parquet export written")
	return nil
}

// ReadScoredPoints loads every point of a file written by WriteScoredRows.
func ReadScoredPoints(filename string) ([]ScoredPoint, error) {
	fr, err := local.NewLocalFileReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(ScoredPoint), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pr.ReadStop()

	points := make([]ScoredPoint, int(pr.GetNumRows()))
	if err := pr.Read(&points); err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	return points, nil
}
