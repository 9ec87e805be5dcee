package shop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/grandline/server/internal/dependencies/mocks"
	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/services/character"
	"github.com/grandline/server/internal/storage/memory"
	"github.com/grandline/server/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Store
	service *Service
	ctx     context.Context

	userID model.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
	s.userID = "user-1"

	s.Require().NoError(s.service.EnsureCatalog(s.ctx))

	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	chars := character.New(s.storage, clk, testutil.NopLogger())
	_, err := chars.Create(s.ctx, s.userID, "Luffy", "PIRATE")
	s.Require().NoError(err)
}

func (s *ServiceSuite) item(name string) *model.Item {
	item, err := s.storage.GetItemByName(s.ctx, name)
	s.Require().NoError(err)
	return item
}

// Catalog tests

func (s *ServiceSuite) TestCatalogListsSeededItems() {
	items, err := s.service.Catalog(s.ctx)
	s.Require().NoError(err)
	s.Len(items, 4)

	names := make(map[string]int)
	for _, item := range items {
		names[item.Name] = item.Price
	}
	s.Equal(150, names["Wooden Sword"])
	s.Equal(500, names["Flintlock Pistol"])
	s.Equal(50, names["Mystery Meat"])
	s.Equal(1000, names["Ship Log Pose"])
}

func (s *ServiceSuite) TestEnsureCatalogIsIdempotent() {
	before := s.item("Wooden Sword")

	s.Require().NoError(s.service.EnsureCatalog(s.ctx))

	after := s.item("Wooden Sword")
	s.Equal(before.ID, after.ID)

	items, err := s.service.Catalog(s.ctx)
	s.Require().NoError(err)
	s.Len(items, 4)
}

// Buy tests

func (s *ServiceSuite) TestBuyDeductsBerriesAndAddsItem() {
	sword := s.item("Wooden Sword")

	result, err := s.service.Buy(s.ctx, s.userID, sword.ID, 1, "")
	s.Require().NoError(err)

	s.Equal(350, result.Berries)
	s.Equal(1, result.Line.Quantity)

	char, _ := s.storage.GetCharacterByUser(s.ctx, s.userID)
	s.Equal(350, char.Berries)
}

func (s *ServiceSuite) TestBuyAccumulatesQuantity() {
	sword := s.item("Wooden Sword")

	_, err := s.service.Buy(s.ctx, s.userID, sword.ID, 1, "")
	s.Require().NoError(err)

	result, err := s.service.Buy(s.ctx, s.userID, sword.ID, 1, "")
	s.Require().NoError(err)

	s.Equal(200, result.Berries)
	s.Equal(2, result.Line.Quantity)

	inv, err := s.service.GetInventory(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Len(inv.Lines, 1)
	s.Equal(2, inv.Lines[0].Quantity)
}

func (s *ServiceSuite) TestBuyMultipleQuantityCostsMultiple() {
	meat := s.item("Mystery Meat")

	result, err := s.service.Buy(s.ctx, s.userID, meat.ID, 3, "")
	s.Require().NoError(err)

	s.Equal(350, result.Berries)
	s.Equal(3, result.Line.Quantity)
}

func (s *ServiceSuite) TestBuyFailsWhenUnaffordable() {
	pose := s.item("Ship Log Pose")

	_, err := s.service.Buy(s.ctx, s.userID, pose.ID, 1, "")
	s.ErrorIs(err, model.ErrInsufficientBerries)

	// Nothing changed
	char, _ := s.storage.GetCharacterByUser(s.ctx, s.userID)
	s.Equal(500, char.Berries)

	inv, err := s.service.GetInventory(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Empty(inv.Lines)
}

func (s *ServiceSuite) TestBuyFailsForUnknownItem() {
	_, err := s.service.Buy(s.ctx, s.userID, "no-such-item", 1, "")
	s.ErrorIs(err, model.ErrItemNotFound)

	char, _ := s.storage.GetCharacterByUser(s.ctx, s.userID)
	s.Equal(500, char.Berries)
}

func (s *ServiceSuite) TestBuyRejectsNonPositiveQuantity() {
	sword := s.item("Wooden Sword")

	_, err := s.service.Buy(s.ctx, s.userID, sword.ID, 0, "")
	s.ErrorIs(err, model.ErrInvalidQuantity)

	_, err = s.service.Buy(s.ctx, s.userID, sword.ID, -2, "")
	s.ErrorIs(err, model.ErrInvalidQuantity)
}

func (s *ServiceSuite) TestBuyRejectsQuantityAboveCap() {
	sword := s.item("Wooden Sword")

	_, err := s.service.Buy(s.ctx, s.userID, sword.ID, MaxPurchaseQuantity+1, "")
	s.ErrorIs(err, model.ErrInvalidQuantity)

	// A quantity large enough to overflow price*quantity negative must be
	// rejected before any store mutation: a negative total would pass the
	// affordability check and credit the balance instead of charging it
	huge := (1 << 62) / 10
	_, err = s.service.Buy(s.ctx, s.userID, sword.ID, huge, "")
	s.ErrorIs(err, model.ErrInvalidQuantity)

	char, err := s.storage.GetCharacterByUser(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(500, char.Berries)

	lines, err := s.storage.ListInventory(s.ctx, char.ID)
	s.Require().NoError(err)
	s.Empty(lines)
}

func (s *ServiceSuite) TestBuyFailsWithoutCharacter() {
	sword := s.item("Wooden Sword")

	_, err := s.service.Buy(s.ctx, "user-without-character", sword.ID, 1, "")
	s.ErrorIs(err, model.ErrCharacterNotFound)
}

func (s *ServiceSuite) TestBuyReplaysWithIdempotencyKey() {
	sword := s.item("Wooden Sword")

	first, err := s.service.Buy(s.ctx, s.userID, sword.ID, 1, "order-1")
	s.Require().NoError(err)

	// Same key: recorded result, no second charge
	replay, err := s.service.Buy(s.ctx, s.userID, sword.ID, 1, "order-1")
	s.Require().NoError(err)
	s.Equal(first.Berries, replay.Berries)
	s.Equal(first.Line.Quantity, replay.Line.Quantity)

	char, _ := s.storage.GetCharacterByUser(s.ctx, s.userID)
	s.Equal(350, char.Berries)
}

func (s *ServiceSuite) TestBuyDistinctKeysChargeSeparately() {
	sword := s.item("Wooden Sword")

	_, err := s.service.Buy(s.ctx, s.userID, sword.ID, 1, "order-1")
	s.Require().NoError(err)

	result, err := s.service.Buy(s.ctx, s.userID, sword.ID, 1, "order-2")
	s.Require().NoError(err)
	s.Equal(200, result.Berries)
	s.Equal(2, result.Line.Quantity)
}

// Two concurrent purchases must serialize: with 500 berries and a 500
// berry item, exactly one succeeds and the balance never goes negative.
func (s *ServiceSuite) TestConcurrentBuysNeverOverspend() {
	pistol := s.item("Flintlock Pistol")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.service.Buy(s.ctx, s.userID, pistol.ID, 1, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, model.ErrInsufficientBerries)
		}
	}
	s.Equal(1, succeeded)

	char, _ := s.storage.GetCharacterByUser(s.ctx, s.userID)
	s.Equal(0, char.Berries)

	inv, _ := s.service.GetInventory(s.ctx, s.userID)
	s.Require().Len(inv.Lines, 1)
	s.Equal(1, inv.Lines[0].Quantity)
}

// GetInventory tests

func (s *ServiceSuite) TestGetInventoryIncludesBalanceAndItemDetails() {
	meat := s.item("Mystery Meat")
	_, err := s.service.Buy(s.ctx, s.userID, meat.ID, 2, "")
	s.Require().NoError(err)

	inv, err := s.service.GetInventory(s.ctx, s.userID)
	s.Require().NoError(err)

	s.Equal(400, inv.Berries)
	s.Require().Len(inv.Lines, 1)
	s.Equal(2, inv.Lines[0].Quantity)
	s.Require().NotNil(inv.Lines[0].Item)
	s.Equal("Mystery Meat", inv.Lines[0].Item.Name)
}

func (s *ServiceSuite) TestGetInventoryEmptyForNewCharacter() {
	inv, err := s.service.GetInventory(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(500, inv.Berries)
	s.Empty(inv.Lines)
}
