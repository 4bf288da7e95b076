package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
)

// RecipientResolver works out which administrators hear about a branch's bookings
type RecipientResolver struct {
	repo repositories.RecipientRepository
}

// NewRecipientResolver creates a new recipient resolver
func NewRecipientResolver(repo repositories.RecipientRepository) *RecipientResolver {
	return &RecipientResolver{repo: repo}
}

// AdminRecipients returns the super-admins plus the branch's admins, deduplicated.
func (r *RecipientResolver) AdminRecipients(ctx context.Context, branchID string) ([]string, error) {
	superAdmins, err := r.repo.ListSuperAdminUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve super admins: %w", err)
	}

	var branchAdmins []string
	if branchID != "" {
		branchAdmins, err = r.repo.ListBranchAdminUserIDs(ctx, branchID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve admins for branch %s: %w", branchID, err)
		}
	}

	return MergeRecipients(superAdmins, branchAdmins), nil
}

// MergeRecipients unions user id lists, dropping blanks and duplicates, and
// returns them sorted.
func MergeRecipients(groups ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, group := range groups {
		for _, id := range group {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	sort.Strings(merged)
	return merged
}
