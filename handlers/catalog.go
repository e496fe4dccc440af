package handlers

import (
	"database/sql"
	"net/http"

	"mallhub-server/database"
	"mallhub-server/models"
	"mallhub-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListSections returns every mall section.
func ListSections(c *gin.Context) {
	rows, err := database.Database.Query(`
		SELECT id, name, description, created_at, updated_at
		FROM sections ORDER BY name`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to fetch sections"))
		return
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var s models.Section
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to scan section"))
			return
		}
		sections = append(sections, s)
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// CreateSection adds a mall section.
func CreateSection(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var s models.Section
	err := database.Database.QueryRow(`
		INSERT INTO sections (name, description) VALUES ($1, $2)
		RETURNING id, name, description, created_at, updated_at`,
		req.Name, req.Description,
	).Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create section"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"section": s})
}

// ListCategories returns the product categories.
func ListCategories(c *gin.Context) {
	rows, err := database.Database.Query(`
		SELECT id, name, description, created_at, updated_at
		FROM categories ORDER BY name`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to fetch categories"))
		return
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to scan category"))
			return
		}
		categories = append(categories, cat)
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory adds a product category.
func CreateCategory(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var cat models.Category
	err := database.Database.QueryRow(`
		INSERT INTO categories (name, description) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description, updated_at = now()
		RETURNING id, name, description, created_at, updated_at`,
		req.Name, req.Description,
	).Scan(&cat.ID, &cat.Name, &cat.Description, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create category"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": cat})
}

// ListStores returns every store with its section.
func ListStores(c *gin.Context) {
	rows, err := database.Database.Query(`
		SELECT id, name, description, owner_id, section_id, created_at, updated_at
		FROM stores ORDER BY name`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to fetch stores"))
		return
	}
	defer rows.Close()

	var stores []models.Store
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.OwnerID,
			&s.SectionID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to scan store"))
			return
		}
		stores = append(stores, s)
	}
	c.JSON(http.StatusOK, gin.H{"stores": stores})
}

// CreateStore registers a store owned by the caller.
func CreateStore(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name        string     `json:"name" binding:"required"`
		Description *string    `json:"description"`
		SectionID   *uuid.UUID `json:"section_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var s models.Store
	err := database.Database.QueryRow(`
		INSERT INTO stores (name, description, owner_id, section_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, owner_id, section_id, created_at, updated_at`,
		req.Name, req.Description, userID, req.SectionID,
	).Scan(&s.ID, &s.Name, &s.Description, &s.OwnerID, &s.SectionID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create store"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"store": s})
}

// storeOwnedBy verifies the store belongs to the user unless they are admin.
func storeOwnedBy(c *gin.Context, storeID, userID uuid.UUID) bool {
	if currentUserRole(c) == models.RoleAdmin {
		return true
	}
	var ownerID uuid.UUID
	err := database.Database.QueryRow(
		`SELECT owner_id FROM stores WHERE id = $1`, storeID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("Store not found"))
		return false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return false
	}
	if ownerID != userID {
		c.JSON(http.StatusForbidden, utils.ErrorResponse("Not the store owner"))
		return false
	}
	return true
}

// SetStoreDiscount creates or replaces the store-wide discount.
func SetStoreDiscount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	storeID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if !storeOwnedBy(c, storeID, userID) {
		return
	}

	var req struct {
		Percentage decimal.Decimal `json:"percentage" binding:"required"`
		IsActive   bool            `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}
	if req.Percentage.IsNegative() || req.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Percentage must be between 0 and 100"))
		return
	}

	var d models.StoreDiscount
	err := database.Database.QueryRow(`
		INSERT INTO store_discounts (store_id, percentage, is_active)
		VALUES ($1, $2, $3)
		ON CONFLICT (store_id)
		DO UPDATE SET percentage = EXCLUDED.percentage, is_active = EXCLUDED.is_active,
		              updated_at = now()
		RETURNING id, store_id, percentage, is_active, created_at, updated_at`,
		storeID, req.Percentage, req.IsActive,
	).Scan(&d.ID, &d.StoreID, &d.Percentage, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to set store discount"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"discount": d})
}

// ListProducts returns active catalog products, optionally filtered by store
// or category.
func ListProducts(c *gin.Context) {
	query := `
		SELECT id, name, description, price, category_id, store_id,
		       is_prize_product, is_active, is_pre_order, created_at, updated_at
		FROM products
		WHERE is_active = TRUE AND is_prize_product = FALSE`
	args := []interface{}{}

	if storeID := c.Query("store_id"); storeID != "" {
		id, err := uuid.Parse(storeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid store_id format"))
			return
		}
		args = append(args, id)
		query += ` AND store_id = $1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := database.Database.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to fetch products"))
		return
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID,
			&p.StoreID, &p.IsPrizeProduct, &p.IsActive, &p.IsPreOrder,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to scan product"))
			return
		}
		products = append(products, p)
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// CreateProduct adds a product to one of the caller's stores.
func CreateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name        string          `json:"name" binding:"required"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price" binding:"required"`
		CategoryID  *uuid.UUID      `json:"category_id"`
		StoreID     uuid.UUID       `json:"store_id" binding:"required"`
		IsPreOrder  bool            `json:"is_pre_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}
	if req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Price cannot be negative"))
		return
	}
	if !storeOwnedBy(c, req.StoreID, userID) {
		return
	}

	var p models.Product
	err := database.Database.QueryRow(`
		INSERT INTO products (name, description, price, category_id, store_id, is_pre_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, description, price, category_id, store_id,
		          is_prize_product, is_active, is_pre_order, created_at, updated_at`,
		req.Name, req.Description, req.Price, req.CategoryID, req.StoreID, req.IsPreOrder,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.StoreID,
		&p.IsPrizeProduct, &p.IsActive, &p.IsPreOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create product"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": p})
}

// GetProduct returns one product.
func GetProduct(c *gin.Context) {
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var p models.Product
	err := database.Database.QueryRow(`
		SELECT id, name, description, price, category_id, store_id,
		       is_prize_product, is_active, is_pre_order, created_at, updated_at
		FROM products WHERE id = $1`, productID,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.StoreID,
		&p.IsPrizeProduct, &p.IsActive, &p.IsPreOrder, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("Product not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

// UpdateProduct edits a product in one of the caller's stores.
func UpdateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var storeID uuid.NullUUID
	err := database.Database.QueryRow(
		`SELECT store_id FROM products WHERE id = $1`, productID).Scan(&storeID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("Product not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}
	if storeID.Valid && !storeOwnedBy(c, storeID.UUID, userID) {
		return
	}

	var req struct {
		Name        string          `json:"name" binding:"required"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price" binding:"required"`
		IsActive    *bool           `json:"is_active"`
		IsPreOrder  bool            `json:"is_pre_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	var p models.Product
	err = database.Database.QueryRow(`
		UPDATE products
		SET name = $1, description = $2, price = $3, is_active = $4,
		    is_pre_order = $5, updated_at = now()
		WHERE id = $6
		RETURNING id, name, description, price, category_id, store_id,
		          is_prize_product, is_active, is_pre_order, created_at, updated_at`,
		req.Name, req.Description, req.Price, active, req.IsPreOrder, productID,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.StoreID,
		&p.IsPrizeProduct, &p.IsActive, &p.IsPreOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update product"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

// DeleteProduct removes a product from one of the caller's stores.
func DeleteProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var storeID uuid.NullUUID
	err := database.Database.QueryRow(
		`SELECT store_id FROM products WHERE id = $1`, productID).Scan(&storeID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("Product not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}
	if storeID.Valid && !storeOwnedBy(c, storeID.UUID, userID) {
		return
	}

	if _, err := database.Database.Exec(`DELETE FROM products WHERE id = $1`, productID); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to delete product"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
