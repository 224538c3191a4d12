package copperx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CopperxBot/entity"
	"CopperxBot/internal/fakes"
	"CopperxBot/internal/service/copperx"

	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, handler http.HandlerFunc) *copperx.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return copperx.New(srv.URL+"/", time.Second, fakes.Logger())
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestOtpLogin(t *testing.T) {
	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/api/auth/email-otp/request":
			writeJSON(t, w, http.StatusOK, map[string]string{"email": body["email"], "sid": "sid-9"})
		case "/api/auth/email-otp/authenticate":
			if body["otp"] != "123456" {
				writeJSON(t, w, http.StatusBadRequest, map[string]any{"message": []string{"Invalid otp"}})
				return
			}
			writeJSON(t, w, http.StatusOK, map[string]any{
				"accessToken": "tok",
				"expireAt":    "2030-01-02T03:04:05Z",
				"user":        map[string]string{"id": "u1", "email": body["email"], "organizationId": "org"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	challenge, err := c.RequestOtp(ctx, "a@b.com")
	require.NoError(t, err)
	require.Equal(t, "sid-9", challenge.Sid)

	_, err = c.VerifyOtp(ctx, "a@b.com", "000000", challenge.Sid)
	require.ErrorIs(t, err, entity.ErrInvalidOtp)

	res, err := c.VerifyOtp(ctx, "a@b.com", "123456", challenge.Sid)
	require.NoError(t, err)
	require.Equal(t, "tok", res.AccessToken)
	require.Equal(t, "org", res.User.OrganizationID)
	require.Equal(t, time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC).Unix(), res.ExpireAt)
}

func TestCheckTokenSendsBearer(t *testing.T) {
	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/me", r.URL.Path)
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			writeJSON(t, w, http.StatusOK, map[string]string{"id": "u1", "email": "a@b.com"})
		case "Bearer broken":
			writeJSON(t, w, http.StatusInternalServerError, map[string]string{"message": "oops"})
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	ctx := context.Background()

	ok, err := c.CheckToken(ctx, "good")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.CheckToken(ctx, "revoked")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = c.CheckToken(ctx, "broken")
	var apiErr *copperx.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.Equal(t, "oops", apiErr.Message)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	c := copperx.New(srv.URL, 20*time.Millisecond, fakes.Logger())

	_, err := c.ListBalances(context.Background(), "tok")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBalancesAndDeposit(t *testing.T) {
	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/wallets/balances":
			writeJSON(t, w, http.StatusOK, []map[string]any{{
				"walletId":  "w1",
				"isDefault": true,
				"network":   "Polygon",
				"balances":  []map[string]string{{"symbol": "USDC", "balance": "12.5", "address": "0xabc"}},
			}})
		case "/api/wallets":
			writeJSON(t, w, http.StatusOK, []map[string]any{
				{"id": "w1", "network": "polygon", "walletAddress": "0xabc"},
			})
		}
	})
	ctx := context.Background()

	wallets, err := c.ListBalances(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	require.Equal(t, "polygon", wallets[0].Network)
	require.Equal(t, "12.5", wallets[0].Balance)
	require.True(t, wallets[0].IsDefault)

	addr, err := c.DepositAddress(ctx, "tok", "polygon")
	require.NoError(t, err)
	require.Equal(t, "0xabc", addr.Address)

	_, err = c.DepositAddress(ctx, "tok", "base")
	require.Error(t, err)
}

func TestSubmitCarriesIdempotencyKey(t *testing.T) {
	var seen []string
	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/transfers/send", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "bob@example.com", body["email"])
		require.Equal(t, "50", body["amount"])
		seen = append(seen, r.Header.Get("Idempotency-Key"))
		writeJSON(t, w, http.StatusOK, map[string]string{"id": "tx-1", "status": "pending"})
	})

	req := entity.TransferRequest{
		Kind:           entity.TransferSendEmail,
		Recipient:      "bob@example.com",
		Amount:         "50",
		Network:        "polygon",
		IdempotencyKey: "flow-1",
	}
	receipt, err := c.Submit(context.Background(), "tok", req)
	require.NoError(t, err)
	require.Equal(t, "tx-1", receipt.TransferID)
	require.Equal(t, []string{"flow-1"}, seen)

	req.Amount = ""
	_, err = c.Submit(context.Background(), "tok", req)
	require.Error(t, err)
	require.Len(t, seen, 1)
}

func TestListTransfers(t *testing.T) {
	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"data":  []map[string]string{{"id": "t1", "status": "success", "amount": "3"}},
			"count": 6,
		})
	})

	page, err := c.ListTransfers(context.Background(), "tok", 2, 5)
	require.NoError(t, err)
	require.Equal(t, 2, page.Page)
	require.Equal(t, 6, page.Total)
	require.False(t, page.HasNext())
}

func TestKycStatusMapping(t *testing.T) {
	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/kycs/status/a@b.com", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]string{"status": "approved"})
	})

	info, err := c.KycStatus(context.Background(), "tok", "a@b.com")
	require.NoError(t, err)
	require.Equal(t, entity.KycVerified, info.Status)
}

func TestUnauthorized(t *testing.T) {
	c := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.ListTransfers(context.Background(), "tok", 1, 5)
	require.True(t, errors.Is(err, entity.ErrUnauthorized))
}
