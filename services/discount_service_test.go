package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/grandesports/training_platform/models"
	"github.com/stretchr/testify/assert"
)

func TestCheckDiscountUsable_Active(t *testing.T) {
	discount := &models.DiscountCode{IsActive: true}

	assert.NoError(t, CheckDiscountUsable(discount, nil, time.Now()))
}

func TestCheckDiscountUsable_Inactive(t *testing.T) {
	discount := &models.DiscountCode{IsActive: false}

	assert.ErrorIs(t, CheckDiscountUsable(discount, nil, time.Now()), ErrInvalidDiscount)
}

func TestCheckDiscountUsable_Nil(t *testing.T) {
	assert.ErrorIs(t, CheckDiscountUsable(nil, nil, time.Now()), ErrInvalidDiscount)
}

func TestCheckDiscountUsable_Window(t *testing.T) {
	now := time.Now()
	from := now.Add(time.Hour)
	until := now.Add(-time.Hour)

	notYet := &models.DiscountCode{IsActive: true, ValidFrom: &from}
	assert.ErrorIs(t, CheckDiscountUsable(notYet, nil, now), ErrDiscountNotYetValid)

	expired := &models.DiscountCode{IsActive: true, ValidUntil: &until}
	assert.ErrorIs(t, CheckDiscountUsable(expired, nil, now), ErrDiscountExpired)

	openFrom := now.Add(-time.Hour)
	openUntil := now.Add(time.Hour)
	inWindow := &models.DiscountCode{IsActive: true, ValidFrom: &openFrom, ValidUntil: &openUntil}
	assert.NoError(t, CheckDiscountUsable(inWindow, nil, now))
}

func TestCheckDiscountUsable_AthleteRestriction(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	discount := &models.DiscountCode{IsActive: true, AthleteID: &owner}

	assert.NoError(t, CheckDiscountUsable(discount, &owner, time.Now()))
	assert.ErrorIs(t, CheckDiscountUsable(discount, &other, time.Now()), ErrDiscountNotForAccount)

	// anonymous callers can never use a restricted code
	assert.ErrorIs(t, CheckDiscountUsable(discount, nil, time.Now()), ErrDiscountNotForAccount)
}
