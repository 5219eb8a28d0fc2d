//go:build integration

package repository

import (
	"errors"
	"testing"

	"github.com/almagid/almagid/internal/model"
)

func TestIntegrationListingRepository_CreateAndList(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	owner := newTestUser()
	if err := repo.CreateUser(ctx, owner); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	for _, kind := range []model.Kind{model.KindPlace, model.KindHostel} {
		first := &model.Listing{Name: "First", Location: "Almaty", Rating: 4, UserID: owner.ID}
		second := &model.Listing{Name: "Second", Location: "Astana", Rating: 5, UserID: owner.ID}

		if err := repo.CreateListing(ctx, kind, first); err != nil {
			t.Fatalf("CreateListing(%s) failed: %v", kind, err)
		}
		if err := repo.CreateListing(ctx, kind, second); err != nil {
			t.Fatalf("CreateListing(%s) failed: %v", kind, err)
		}

		listings, err := repo.ListListings(ctx, kind)
		if err != nil {
			t.Fatalf("ListListings(%s) failed: %v", kind, err)
		}
		if len(listings) != 2 {
			t.Fatalf("ListListings(%s) returned %d rows, want 2", kind, len(listings))
		}
		// Newest first.
		if listings[0].Name != "Second" {
			t.Errorf("ListListings(%s) order: got %q first, want Second", kind, listings[0].Name)
		}
	}
}

func TestIntegrationListingRepository_KindsAreSeparate(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	owner := newTestUser()
	if err := repo.CreateUser(ctx, owner); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	place := &model.Listing{Name: "A Place", Location: "Almaty", Rating: 3, UserID: owner.ID}
	if err := repo.CreateListing(ctx, model.KindPlace, place); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}

	hostels, err := repo.ListListings(ctx, model.KindHostel)
	if err != nil {
		t.Fatalf("ListListings failed: %v", err)
	}
	if len(hostels) != 0 {
		t.Errorf("hostels table contains %d rows after place insert", len(hostels))
	}

	if _, err := repo.GetListingByID(ctx, model.KindHostel, place.ID); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound across kinds, got %v", err)
	}
}

func TestIntegrationListingRepository_UpdateAndDelete(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	owner := newTestUser()
	if err := repo.CreateUser(ctx, owner); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	price := "5000 KZT"
	listing := &model.Listing{Name: "Original", Location: "Almaty", Rating: 3, PriceText: &price, UserID: owner.ID}
	if err := repo.CreateListing(ctx, model.KindPlace, listing); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}

	listing.Name = "Renamed"
	listing.PriceText = nil
	if err := repo.UpdateListing(ctx, model.KindPlace, listing); err != nil {
		t.Fatalf("UpdateListing failed: %v", err)
	}

	got, err := repo.GetListingByID(ctx, model.KindPlace, listing.ID)
	if err != nil {
		t.Fatalf("GetListingByID failed: %v", err)
	}
	if got.Name != "Renamed" {
		t.Errorf("name not updated: %q", got.Name)
	}
	if got.PriceText != nil {
		t.Errorf("price not cleared: %v", *got.PriceText)
	}

	if err := repo.DeleteListing(ctx, model.KindPlace, listing.ID); err != nil {
		t.Fatalf("DeleteListing failed: %v", err)
	}
	if _, err := repo.GetListingByID(ctx, model.KindPlace, listing.ID); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound after delete, got %v", err)
	}
}

func TestIntegrationListingRepository_OwnerCascade(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	owner := newTestUser()
	if err := repo.CreateUser(ctx, owner); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	listing := &model.Listing{Name: "Orphan", Location: "Almaty", Rating: 2, UserID: owner.ID}
	if err := repo.CreateListing(ctx, model.KindPlace, listing); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}

	if _, err := repo.Pool().Exec(ctx, "DELETE FROM users WHERE id = $1", owner.ID); err != nil {
		t.Fatalf("delete user failed: %v", err)
	}

	if _, err := repo.GetListingByID(ctx, model.KindPlace, listing.ID); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("expected cascade delete, got %v", err)
	}
}

func TestIntegrationListingRepository_ListByOwner(t *testing.T) {
	ctx, repo := newRepositoryTestEnv(t)

	alice := newTestUser()
	bob := newTestUser()
	if err := repo.CreateUser(ctx, alice); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := repo.CreateUser(ctx, bob); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_ = repo.CreateListing(ctx, model.KindPlace, &model.Listing{Name: "Alice's", Location: "A", Rating: 3, UserID: alice.ID})
	_ = repo.CreateListing(ctx, model.KindPlace, &model.Listing{Name: "Bob's", Location: "B", Rating: 4, UserID: bob.ID})

	mine, err := repo.ListListingsByOwner(ctx, model.KindPlace, alice.ID)
	if err != nil {
		t.Fatalf("ListListingsByOwner failed: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "Alice's" {
		t.Errorf("unexpected owner listings: %+v", mine)
	}
}
