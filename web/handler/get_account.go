package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hivescope/witnessboard/hive"
	"github.com/hivescope/witnessboard/pkg/httpkit"
	"github.com/hivescope/witnessboard/web/api"
	"github.com/hivescope/witnessboard/web/handler/bind"
)

const GetAccountRoute = http.MethodGet + " " + "/accounts/{name}"

// Sentinel errors
var (
	ErrAccountLookupFailed = errors.New("failed to look up account")
	ErrUnknownAccount      = errors.New("account not found")
)

// AccountSnapshotter fetches a single account's derived snapshot
type AccountSnapshotter interface {
	Snapshot(ctx context.Context, username string) (*hive.AccountSnapshot, error)
}

type GetAccount struct {
	accounts AccountSnapshotter
}

func NewGetAccount(accounts AccountSnapshotter) *GetAccount {
	return &GetAccount{
		accounts: accounts,
	}
}

func (h *GetAccount) AddRoutes(m *http.ServeMux) {
	m.Handle(GetAccountRoute, httpkit.HandlerFunc(h.GetAccount))
}

func (h *GetAccount) GetAccount(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	name, err := bind.AccountName(r)
	if err != nil {
		return httpkit.JsonError(api.BadRequest(err))
	}

	snap, err := h.accounts.Snapshot(r.Context(), name)
	if err != nil {
		return httpkit.JsonError(api.InternalServerError(fmt.Errorf("%w: %w", ErrAccountLookupFailed, err)))
	}
	// Semantic absence: the chain reports no such account.
	if snap == nil {
		return httpkit.JsonError(api.NotFound(fmt.Errorf("%w: %s", ErrUnknownAccount, name)))
	}

	resp := bind.GetAccountResponse(*snap)
	return httpkit.JSON(resp)
}
