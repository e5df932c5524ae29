package usecase

import (
	"testing"

	"github.com/K-Gaydukov/marketplace/internal/entity"
)

func TestCanAccessMatrix(t *testing.T) {
	t.Parallel()

	order := &entity.Order{ID: 10, UserID: 7}

	tests := []struct {
		name string
		p    entity.Principal
		mode AccessMode
		want bool
	}{
		{
			name: "owner reads own order",
			p:    entity.Principal{Kind: entity.PrincipalUser, UserID: 7, Role: entity.RoleUser},
			mode: ModeRead,
			want: true,
		},
		{
			name: "owner mutates own order",
			p:    entity.Principal{Kind: entity.PrincipalUser, UserID: 7, Role: entity.RoleUser},
			mode: ModeMutate,
			want: true,
		},
		{
			name: "stranger denied read",
			p:    entity.Principal{Kind: entity.PrincipalUser, UserID: 8, Role: entity.RoleUser},
			mode: ModeRead,
			want: false,
		},
		{
			name: "stranger denied mutate",
			p:    entity.Principal{Kind: entity.PrincipalUser, UserID: 8, Role: entity.RoleUser},
			mode: ModeMutate,
			want: false,
		},
		{
			name: "admin reads any order",
			p:    entity.Principal{Kind: entity.PrincipalUser, UserID: 8, Role: entity.RoleAdmin},
			mode: ModeRead,
			want: true,
		},
		{
			name: "admin mutates any order",
			p:    entity.Principal{Kind: entity.PrincipalUser, UserID: 8, Role: entity.RoleAdmin},
			mode: ModeMutate,
			want: true,
		},
		{
			name: "service identity acts as admin",
			p:    entity.Principal{Kind: entity.PrincipalService},
			mode: ModeMutate,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccess(order, tt.p, tt.mode); got != tt.want {
				t.Errorf("CanAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}
