package model

import (
	"math"
	"math/rand"
)

// DataSource tags where a training dataset came from
type DataSource string

const (
	SourceReal      DataSource = "real"
	SourceSynthetic DataSource = "synthetic"
)

// TrainingRow is one historical (or simulated) promotion episode joined with
// its surrounding sales and revenue figures.
type TrainingRow struct {
	ArticleID           int64   `db:"article_id"`
	Price               float64 `db:"price"`
	CategoryID          int64   `db:"category_id"`
	CurrentStock        float64 `db:"current_stock"`
	MinStockThreshold   float64 `db:"min_stock_threshold"`
	QuantitySupplied    float64 `db:"quantity_supplied"`
	PromotionPercentage float64 `db:"promotion_percentage"`
	SalesBefore         float64 `db:"sales_before"`
	SalesDuring         float64 `db:"sales_during"`
	RevenueBefore       float64 `db:"revenue_before"`
	RevenueDuring       float64 `db:"revenue_during"`
}

// Dataset is a prepared feature matrix with its target vector
type Dataset struct {
	X      [][]float64
	Y      []float64
	Source DataSource
}

// BuildDataset derives features and the training target from raw rows.
// Target = (0.6*promotion_effectiveness + 0.4*revenue_change) * 100,
// clipped to [-50, 200].
func BuildDataset(rows []TrainingRow, source DataSource) Dataset {
	ds := Dataset{
		X:      make([][]float64, 0, len(rows)),
		Y:      make([]float64, 0, len(rows)),
		Source: source,
	}

	avgPriceByCategory := categoryMeanPrices(rows)

	for _, row := range rows {
		rotationRate := row.SalesBefore / nonZero(row.QuantitySupplied)
		stockLevel := row.CurrentStock / nonZero(row.MinStockThreshold)
		priceLevel := 1.0
		if avg := avgPriceByCategory[row.CategoryID]; avg > 0 {
			priceLevel = row.Price / avg
		}

		f := Features{
			Price:             row.Price,
			CurrentStock:      row.CurrentStock,
			MinStockThreshold: row.MinStockThreshold,
			QuantitySupplied:  row.QuantitySupplied,
			RotationRate:      rotationRate,
			StockLevel:        stockLevel,
			PriceLevel:        priceLevel,
			CategoryID:        float64(row.CategoryID),
		}

		effectiveness := row.SalesDuring/nonZero(row.SalesBefore) - 1
		revenueChange := row.RevenueDuring/nonZero(row.RevenueBefore) - 1
		target := (effectiveness*0.6 + revenueChange*0.4) * 100
		target = math.Max(-50, math.Min(200, target))

		ds.X = append(ds.X, f.Vector())
		ds.Y = append(ds.Y, target)
	}
	return ds
}

// GenerateSyntheticRows produces a simulated training dataset with the same
// schema as real extraction. The RNG is seeded for reproducibility.
func GenerateSyntheticRows(n int, seed int64) []TrainingRow {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]TrainingRow, 0, n)

	for i := 0; i < n; i++ {
		price := 20 + rng.Float64()*280
		pct := 5 + rng.Float64()*40
		baseSales := float64(10 + rng.Intn(70))

		// Deeper discounts lift sales by a random 1.5x-3x multiple of depth
		promotionEffect := 1 + (pct/100)*(1.5+rng.Float64()*1.5)
		salesDuring := math.Round(baseSales * promotionEffect)
		promoPrice := price * (1 - pct/100)

		rows = append(rows, TrainingRow{
			ArticleID:           int64(i + 1),
			Price:               price,
			CategoryID:          int64(1 + rng.Intn(5)),
			CurrentStock:        float64(rng.Intn(150)),
			MinStockThreshold:   float64(5 + rng.Intn(20)),
			QuantitySupplied:    float64(50 + rng.Intn(750)),
			PromotionPercentage: pct,
			SalesBefore:         baseSales,
			SalesDuring:         salesDuring,
			RevenueBefore:       price * baseSales,
			RevenueDuring:       promoPrice * salesDuring,
		})
	}
	return rows
}

// split partitions the dataset into train and test portions after a seeded
// shuffle, mirroring a fixed-seed 80/20 split.
func (ds Dataset) split(testFraction float64, seed int64) (train, test Dataset) {
	n := len(ds.X)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	testSize := int(float64(n) * testFraction)
	if testSize < 1 && n > 1 {
		testSize = 1
	}

	train = Dataset{Source: ds.Source}
	test = Dataset{Source: ds.Source}
	for i, j := range idx {
		if i < testSize {
			test.X = append(test.X, ds.X[j])
			test.Y = append(test.Y, ds.Y[j])
		} else {
			train.X = append(train.X, ds.X[j])
			train.Y = append(train.Y, ds.Y[j])
		}
	}
	return train, test
}

func categoryMeanPrices(rows []TrainingRow) map[int64]float64 {
	sums := map[int64]float64{}
	counts := map[int64]float64{}
	for _, row := range rows {
		sums[row.CategoryID] += row.Price
		counts[row.CategoryID]++
	}
	means := make(map[int64]float64, len(sums))
	for id, sum := range sums {
		means[id] = sum / counts[id]
	}
	return means
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
