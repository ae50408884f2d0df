package cartControllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/raseen-shahil/Med-App-sub000/apperr"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrQuantityOutOfRange = apperr.New(http.StatusBadRequest,
		fmt.Sprintf("Quantity must be between %d and %d", models.MinCartQuantity, models.MaxCartQuantity))
	ErrInsufficientStock = apperr.New(http.StatusConflict, "Not enough stock")
	ErrItemNotFound      = apperr.NotFound("Cart item")
	ErrMedicineNotFound  = apperr.NotFound("Medicine")
)

// LoadCart returns the user's cart lines, oldest first.
func LoadCart(db *gorm.DB, userID string) ([]models.CartItem, error) {
	items := []models.CartItem{}
	if err := db.Where("user_id = ?", userID).Order("added_at, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return items, nil
}

// LockCart reads the user's cart lines for update. Every writer locks cart
// lines before medicines so checkout and cart edits cannot deadlock.
func LockCart(tx *gorm.DB, userID string) ([]models.CartItem, error) {
	return LoadCart(tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

// LockMedicine reads the medicine row for update so concurrent cart and
// checkout writers see a consistent stock.
func LockMedicine(tx *gorm.DB, medicineID uint) (*models.Medicine, error) {
	var med models.Medicine
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&med, medicineID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMedicineNotFound
	}
	if err != nil {
		return nil, err
	}
	return &med, nil
}

func snapshot(item *models.CartItem, med *models.Medicine) {
	item.Name = med.Name
	item.Brand = med.Brand
	item.Price = med.Price
	item.ImageURL = med.ImageURL
}

// AddToCart upserts the (user, medicine) line. An existing line grows by
// quantity and is clamped to the cart maximum. created reports whether a new
// line was inserted.
func AddToCart(db *gorm.DB, userID string, medicineID uint, quantity int) (item *models.CartItem, created bool, err error) {
	if !models.ValidCartQuantity(quantity) {
		return nil, false, ErrQuantityOutOfRange
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var line models.CartItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND medicine_id = ?", userID, medicineID).
			First(&line).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = models.CartItem{UserID: userID, MedicineID: medicineID, Quantity: quantity}
			created = true
		case err != nil:
			return err
		default:
			line.Quantity = min(line.Quantity+quantity, models.MaxCartQuantity)
		}

		med, err := LockMedicine(tx, medicineID)
		if err != nil {
			return err
		}

		if line.Quantity > med.Stock {
			return ErrInsufficientStock
		}
		snapshot(&line, med)
		line.AddedAt = time.Now()
		if err := tx.Save(&line).Error; err != nil {
			return err
		}
		item = &line
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return item, created, nil
}

// UpdateQuantity sets the quantity of one of the user's lines and refreshes
// its price snapshot.
func UpdateQuantity(db *gorm.DB, userID string, itemID uint, quantity int) (*models.CartItem, error) {
	if !models.ValidCartQuantity(quantity) {
		return nil, ErrQuantityOutOfRange
	}

	var line models.CartItem
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", itemID, userID).
			First(&line).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		if err != nil {
			return err
		}

		med, err := LockMedicine(tx, line.MedicineID)
		if err != nil {
			return err
		}
		if quantity > med.Stock {
			return ErrInsufficientStock
		}
		snapshot(&line, med)
		line.Quantity = quantity
		return tx.Save(&line).Error
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func RemoveItem(db *gorm.DB, userID string, itemID uint) error {
	res := db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func ClearCart(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
