package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"busstation-backend/internal/model"
)

// PutSubscription creates or replaces a subscription and the operators it follows.
func (s *gormStore) PutSubscription(ctx context.Context, subscription model.PushSubscription, operatorIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&subscription).Error; err != nil {
			return err
		}

		var operators []model.Operator
		if len(operatorIDs) > 0 {
			if err := tx.Where("id IN ?", operatorIDs).Find(&operators).Error; err != nil {
				return err
			}
		}

		return tx.Model(&subscription).Association("Operators").Replace(&operators)
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var subscription model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Operators").First(&subscription, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subscription := model.PushSubscription{Endpoint: endpoint}
		if err := tx.Model(&subscription).Association("Operators").Clear(); err != nil {
			return err
		}
		return tx.Delete(&subscription).Error
	})
}

// ListSubscriptionsForOperator returns the subscriptions following an operator.
func (s *gormStore) ListSubscriptionsForOperator(ctx context.Context, operatorID string) ([]model.PushSubscription, error) {
	var subscriptions []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_operator_mapping som ON som.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("som.operator_id = ?", operatorID).
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}
