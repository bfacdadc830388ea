package mockapi

import (
	"food_marketplace/internal/model"
)

// Seed fills the store with a few demo shops and products
func Seed(s *Store) {
	pizza := s.CreateShop(model.ShopInput{
		Name:        "Napoli Pizza",
		Address:     "12 Harbour Street",
		Phone:       "+15550100",
		Description: "Wood-fired pizza",
		Status:      model.ShopStatusActive,
	})
	sushi := s.CreateShop(model.ShopInput{
		Name:    "Sakura Sushi",
		Address: "4 Market Lane",
		Status:  model.ShopStatusActive,
	})
	s.CreateShop(model.ShopInput{Name: "Green Bowl", Address: "88 Park Road"})

	for _, p := range []model.Product{
		{ShopID: pizza.ID, Name: "Margherita", Description: "Tomato, mozzarella, basil", Price: 950},
		{ShopID: pizza.ID, Name: "Diavola", Description: "Spicy salami", Price: 1150},
		{ShopID: sushi.ID, Name: "Salmon Nigiri", Price: 600},
		{ShopID: sushi.ID, Name: "Dragon Roll", Price: 1400},
	} {
		p.ID = s.NewProductID()
		s.SaveProduct(p)
	}
}

// seedOrdersFor gives a new customer some order history to look at
func seedOrdersFor(s *Store, userID string) {
	shops, _ := s.ListShops(model.ListFilters{Status: model.ShopStatusActive, Limit: 1})
	if len(shops) == 0 {
		return
	}
	products, _ := s.ListProducts(model.ListFilters{ShopID: shops[0].ID, Limit: 2})
	if len(products) == 0 {
		return
	}

	items := make([]model.OrderItem, 0, len(products))
	for _, p := range products {
		items = append(items, model.OrderItem{ProductID: p.ID, Name: p.Name, Quantity: 1, Price: p.Price})
	}
	s.PutOrder(model.Order{UserID: userID, ShopID: shops[0].ID, Items: items, Status: model.OrderDelivered})
	s.PutOrder(model.Order{UserID: userID, ShopID: shops[0].ID, Items: items[:1], Status: model.OrderPreparing})
}
