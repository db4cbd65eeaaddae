package service

import (
	"context"

	"catalog/internal/models"
	"catalog/internal/repository"
)

type LikeService struct {
	likes      repository.LikeRepository
	products   *ProductService
	identities *IdentityResolver
}

func NewLikeService(likes repository.LikeRepository, products *ProductService, identities *IdentityResolver) *LikeService {
	return &LikeService{likes: likes, products: products, identities: identities}
}

// ToggleLike flips the caller's like of productID and reports the new state.
func (s *LikeService) ToggleLike(ctx context.Context, productID uint, callerHandle string) (*models.LikeResult, error) {
	caller, err := s.identities.ResolveByHandle(ctx, callerHandle)
	if err != nil {
		return nil, err
	}
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	liked, err := s.likes.Exists(ctx, caller.ID, productID)
	if err != nil {
		return nil, err
	}
	if liked {
		if err := s.likes.Unlike(ctx, caller.ID, productID); err != nil {
			return nil, err
		}
		return &models.LikeResult{ProductID: productID, Liked: false}, nil
	}

	if err := s.likes.Like(ctx, caller.ID, productID); err != nil {
		return nil, err
	}
	return &models.LikeResult{ProductID: productID, Liked: true}, nil
}
