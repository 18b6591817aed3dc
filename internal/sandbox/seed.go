package sandbox

import (
	"gorm.io/gorm"

	"github.com/inspitereno-lang/entebhoomi/internal/models"
)

// Seed loads a small catalog of stores and products. Seeding an already
// populated database is a no-op.
func (s *Server) Seed() error {
	var count int64
	if err := s.db.Model(&Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		stores := []VendorStore{
			{StoreName: "Kumarakom Organics", District: "Kottayam", Image: "uploads/stores/kumarakom.jpg"},
			{StoreName: "Wayanad Spice Farm", District: "Wayanad", Image: "uploads/stores/wayanad.jpg"},
			{StoreName: "Palakkad Rice Collective", District: "Palakkad", Image: "uploads/stores/palakkad.jpg"},
		}
		for i := range stores {
			if err := tx.Create(&stores[i]).Error; err != nil {
				return err
			}
		}

		products := []Product{
			{StoreID: stores[0].ID, Name: "Nendran Banana", Category: "Fruits", Price: 65, Image: "uploads/products/nendran.jpg", BulkThreshold: models.DefaultBulkThreshold, Stock: 500},
			{StoreID: stores[0].ID, Name: "Tender Coconut", Category: "Fruits", Price: 45, Image: "uploads/products/coconut.jpg", BulkThreshold: 50, Stock: 800},
			{StoreID: stores[1].ID, Name: "Black Pepper", Category: "Spices", Price: 540, Image: "uploads/products/pepper.jpg", BulkThreshold: 10, Stock: 200},
			{StoreID: stores[1].ID, Name: "Cardamom", Category: "Spices", Price: 1800, Image: "uploads/products/cardamom.jpg", BulkThreshold: 5, Stock: 80},
			{StoreID: stores[2].ID, Name: "Matta Rice", Category: "Grains", Price: 78, Image: "uploads/products/matta.jpg", Stock: 1200},
			{StoreID: stores[2].ID, Name: "Jaggery Block", Category: "Sweeteners", Price: 120, Image: "uploads/products/jaggery.jpg", BulkThreshold: 30, Stock: 300},
		}
		for i := range products {
			if err := tx.Create(&products[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
