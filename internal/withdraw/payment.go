package withdraw

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/omas1st/contestbk/internal/alerts"
	"github.com/omas1st/contestbk/internal/blob"
	"github.com/omas1st/contestbk/internal/db"
)

// CardDecl is one declared card entry before upload, pointing at the form
// field its optional image arrives under.
type CardDecl struct {
	GiftCard string
	Pin      string
	FileKey  string
}

// CollectCards normalizes the submitted card batch. With cardsCount=N the
// indexed fields giftCard{i}/cardPin{i}/file{i} are read exactly N times and
// holes are skipped. Without cardsCount the legacy flat fields carry a single
// card.
func CollectCards(form url.Values) []CardDecl {
	countStr := form.Get("cardsCount")
	if countStr == "" {
		gc := form.Get("giftCard")
		if gc == "" {
			return nil
		}
		return []CardDecl{{GiftCard: gc, Pin: form.Get("cardPin"), FileKey: "file"}}
	}

	count, err := strconv.Atoi(countStr)
	if err != nil || count < 0 {
		return nil
	}

	var cards []CardDecl
	for i := 0; i < count; i++ {
		idx := strconv.Itoa(i)
		gc := form.Get("giftCard" + idx)
		if gc == "" {
			continue
		}
		cards = append(cards, CardDecl{
			GiftCard: gc,
			Pin:      form.Get("cardPin" + idx),
			FileKey:  "file" + idx,
		})
	}
	return cards
}

// SubmitPayment records one proof-of-payment batch against a withdrawal.
// Image upload failures keep the card without a file and never fail the
// submission.
func SubmitPayment(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	ctx := c.Request().Context()

	w, err := getByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "withdrawal not found"})
	}
	if err != nil {
		c.Logger().Errorf("load withdrawal: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	if w.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your withdrawal"})
	}

	form, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid form"})
	}

	stage := form.Get("stage")
	if !ValidStage(stage) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown stage"})
	}
	amount, _ := strconv.ParseFloat(form.Get("amount"), 64)

	var files map[string][]*multipart.FileHeader
	if mf, mfErr := c.MultipartForm(); mfErr == nil && mf != nil {
		files = mf.File
	}

	cards := CollectCards(form)

	var paymentID string
	err = db.Conn.QueryRow(ctx, `
        INSERT INTO payments (user_id, withdrawal_id, stage, amount, status)
        VALUES ($1, $2, $3, $4, 'submitted')
        RETURNING id`, uid, w.ID, stage, amount).Scan(&paymentID)
	if err != nil {
		c.Logger().Errorf("create payment: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not record payment"})
	}

	for i, card := range cards {
		var fileURL, fileID *string
		if ref := uploadCardFile(c, files, card.FileKey); ref != nil {
			fileURL, fileID = &ref.URL, &ref.ID
		}
		_, err = db.Conn.Exec(ctx, `
            INSERT INTO payment_cards (payment_id, position, gift_card, card_pin, file_url, file_id)
            VALUES ($1, $2, $3, $4, $5, $6)`,
			paymentID, i, card.GiftCard, card.Pin, fileURL, fileID)
		if err != nil {
			c.Logger().Errorf("record card %d: %v", i, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not record payment"})
		}
	}

	// Best-effort heads-up to the admin mailbox
	msg := fmt.Sprintf("Payment submitted: user=%s withdrawal=%s stage=%s amount=%.2f cards=%d", uid, w.ID, stage, amount, len(cards))
	if err := alerts.EnqueueAdminAlert(uid, "info", msg); err != nil {
		c.Logger().Warnf("admin alert enqueue failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"withdrawal_id": w.ID,
		"stage":         w.Stage,
		"status":        w.Status,
		"payment_id":    paymentID,
		"cards":         len(cards),
	})
}

// uploadCardFile pushes one attached image to the blob store. Any failure is
// logged and swallowed; the card is kept without a file reference.
func uploadCardFile(c echo.Context, files map[string][]*multipart.FileHeader, key string) *blob.Ref {
	if files == nil {
		return nil
	}
	headers, ok := files[key]
	if !ok || len(headers) == 0 {
		return nil
	}

	src, err := headers[0].Open()
	if err != nil {
		c.Logger().Warnf("open upload %s: %v", key, err)
		return nil
	}
	defer src.Close()

	ref, err := blob.Store(headers[0].Filename, src)
	if err != nil {
		c.Logger().Warnf("blob upload %s failed, keeping card without file: %v", key, err)
		return nil
	}
	return ref
}
