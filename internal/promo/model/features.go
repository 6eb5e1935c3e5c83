package model

import "github.com/smartpromo/backend-go/internal/domain"

// Feature order is fixed; the scaler and every regressor depend on it.
const (
	featPrice = iota
	featCurrentStock
	featMinStockThreshold
	featQuantitySupplied
	featRotationRate
	featStockLevel
	featPriceLevel
	featCategoryID
	numFeatures
)

// Features is the input vector of the trainable predictor, shared by
// training and inference.
type Features struct {
	Price             float64
	CurrentStock      float64
	MinStockThreshold float64
	QuantitySupplied  float64
	RotationRate      float64
	StockLevel        float64
	PriceLevel        float64
	CategoryID        float64
}

func (f Features) Vector() []float64 {
	v := make([]float64, numFeatures)
	v[featPrice] = f.Price
	v[featCurrentStock] = f.CurrentStock
	v[featMinStockThreshold] = f.MinStockThreshold
	v[featQuantitySupplied] = f.QuantitySupplied
	v[featRotationRate] = f.RotationRate
	v[featStockLevel] = f.StockLevel
	v[featPriceLevel] = f.PriceLevel
	v[featCategoryID] = f.CategoryID
	return v
}

// ArticleFeatures derives the inference-time feature vector for an article
// from its current state and sales history. PriceLevel defaults to 1.0
// because the category average price is not available at inference time.
func ArticleFeatures(article domain.Article, sales []domain.SalesRecord) Features {
	var totalSold, totalSupplied float64
	for _, rec := range sales {
		totalSold += rec.QuantitySold
		totalSupplied += rec.QuantitySupplied
	}
	if len(sales) == 0 {
		totalSupplied = float64(article.CurrentStock)
	}

	var rotationRate float64
	if totalSupplied > 0 {
		rotationRate = totalSold / totalSupplied
	}

	stockLevel := 1.0
	if article.MinStockThreshold > 0 {
		stockLevel = float64(article.CurrentStock) / float64(article.MinStockThreshold)
	}

	return Features{
		Price:             article.Price,
		CurrentStock:      float64(article.CurrentStock),
		MinStockThreshold: float64(article.MinStockThreshold),
		QuantitySupplied:  totalSupplied,
		RotationRate:      rotationRate,
		StockLevel:        stockLevel,
		PriceLevel:        1.0,
		CategoryID:        float64(article.CategoryID),
	}
}
