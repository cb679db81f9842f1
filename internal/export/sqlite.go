package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

// FeatureRecord is the persisted form of a FeatureRow, keyed by (run_id, date).
type FeatureRecord struct {
	RunID    string `gorm:"column:run_id;primaryKey;size:36"`
	Date     string `gorm:"column:date;primaryKey;size:10"`
	Symbol   string `gorm:"column:symbol;index"`
	Exchange string `gorm:"column:exchange"`

	Open            *float64 `gorm:"column:open"`
	High            *float64 `gorm:"column:high"`
	Low             *float64 `gorm:"column:low"`
	Close           *float64 `gorm:"column:close"`
	Volume          *float64 `gorm:"column:volume"`
	DailyReturn     *float64 `gorm:"column:daily_return"`
	Volatility      *float64 `gorm:"column:volatility"`
	SMA5            *float64 `gorm:"column:sma_5"`
	SMA10           *float64 `gorm:"column:sma_10"`
	SMA20           *float64 `gorm:"column:sma_20"`
	RSI             *float64 `gorm:"column:rsi"`
	MACD            *float64 `gorm:"column:macd"`
	MACDSignal      *float64 `gorm:"column:macd_signal"`
	MACDHistogram   *float64 `gorm:"column:macd_histogram"`
	StochK          *float64 `gorm:"column:stoch_k"`
	StochD          *float64 `gorm:"column:stoch_d"`
	WilliamsR       *float64 `gorm:"column:williams_r"`
	BollingerUpper  *float64 `gorm:"column:bollinger_upper"`
	BollingerMiddle *float64 `gorm:"column:bollinger_middle"`
	BollingerLower  *float64 `gorm:"column:bollinger_lower"`
	VIX             *float64 `gorm:"column:vix"`
	DXY             *float64 `gorm:"column:dxy"`
	Treasury10Y     *float64 `gorm:"column:treasury_10y"`
	SP500Corr       *float64 `gorm:"column:sp500_correlation"`
	NewsCount       *float64 `gorm:"column:news_count"`
	NewsRelevance   *float64 `gorm:"column:news_mean_relevance"`
	NewsSentiment   *float64 `gorm:"column:news_mean_sentiment"`

	Headlines string `gorm:"column:news_headlines"`
	Missing   string `gorm:"column:missing"`
	Outliers  string `gorm:"column:outliers"`
	Stale     string `gorm:"column:stale"`

	CollectedAt time.Time `gorm:"column:collected_at"`
}

// TableName implements gorm's tabler.
func (FeatureRecord) TableName() string { return "feature_rows" }

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&FeatureRecord{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

// WriteSQLite upserts every row of ds into the feature_rows table at path.
func WriteSQLite(ctx context.Context, path string, ds *models.Dataset, precision int32) error {
	db, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return SaveRecords(ctx, db, ds, precision)
}

// SaveRecords upserts ds into an open database.
func SaveRecords(ctx context.Context, db *gorm.DB, ds *models.Dataset, precision int32) error {
	records := Records(ds, precision)
	if len(records) == 0 {
		return nil
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(records, 100).Error
	if err != nil {
		return fmt.Errorf("save feature rows: %w", err)
	}
	return nil
}

// Records converts ds into persisted records.
func Records(ds *models.Dataset, precision int32) []FeatureRecord {
	out := make([]FeatureRecord, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		v := func(name string) *float64 { return round(row.Value(name), precision) }
		out = append(out, FeatureRecord{
			RunID:           ds.Metadata.RunID.String(),
			Date:            utils.DateKey(row.Date),
			Symbol:          ds.Metadata.Symbol,
			Exchange:        string(ds.Metadata.Exchange),
			Open:            v(models.ColOpen),
			High:            v(models.ColHigh),
			Low:             v(models.ColLow),
			Close:           v(models.ColClose),
			Volume:          v(models.ColVolume),
			DailyReturn:     v(models.ColDailyReturn),
			Volatility:      v(models.ColVolatility),
			SMA5:            v(models.ColSMA5),
			SMA10:           v(models.ColSMA10),
			SMA20:           v(models.ColSMA20),
			RSI:             v(models.ColRSI),
			MACD:            v(models.ColMACD),
			MACDSignal:      v(models.ColMACDSignal),
			MACDHistogram:   v(models.ColMACDHistogram),
			StochK:          v(models.ColStochK),
			StochD:          v(models.ColStochD),
			WilliamsR:       v(models.ColWilliamsR),
			BollingerUpper:  v(models.ColBollingerUpper),
			BollingerMiddle: v(models.ColBollingerMiddle),
			BollingerLower:  v(models.ColBollingerLower),
			VIX:             v(models.ColVIX),
			DXY:             v(models.ColDXY),
			Treasury10Y:     v(models.ColTreasury10Y),
			SP500Corr:       v(models.ColSP500Correlation),
			NewsCount:       v(models.ColNewsCount),
			NewsRelevance:   v(models.ColNewsRelevance),
			NewsSentiment:   v(models.ColNewsSentiment),
			Headlines:       strings.Join(row.News.Headlines, " | "),
			Missing:         strings.Join(row.Flags.Missing, ";"),
			Outliers:        strings.Join(row.Flags.Outliers, ";"),
			Stale:           strings.Join(row.Flags.Stale, ";"),
			CollectedAt:     ds.Metadata.CollectionDate.UTC(),
		})
	}
	return out
}
