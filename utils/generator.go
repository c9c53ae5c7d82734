package utils

import (
	"math/rand"
	"time"

	"github.com/grandesports/training_platform/models"
	"gorm.io/gorm"
)

const discountCodeLength = 8
const tempPasswordLength = 12
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueDiscountCode produces an unused upper-case discount code.
func GenerateUniqueDiscountCode(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, discountCodeLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := string(b)

		var discount models.DiscountCode
		err := tx.Where("code = ?", code).First(&discount).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return code, nil
			}
			return "", err
		}
	}
}

// GenerateTempPassword produces a throwaway password for admin-provisioned
// accounts.
func GenerateTempPassword() string {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, tempPasswordLength)
	for i := range b {
		b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
	}
	return string(b)
}
