package web

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/models"
	"github.com/ellavondegurechaff/gogift/gifthouse/database/repositories"
	"github.com/ellavondegurechaff/gogift/gifthouse/engine"
	"github.com/ellavondegurechaff/gogift/gifthouse/logger"
)

type createAuctionRequest struct {
	Name string             `json:"name"`
	Gift models.Gift        `json:"gift"`
	Plan []models.RoundPlan `json:"plan"`
}

type placeBidRequest struct {
	UserID string `json:"userId"`
	Amount int64  `json:"amount"`
}

// auctionResponse decorates an engine snapshot with the public artwork
// URL when Spaces storage is configured.
type auctionResponse struct {
	engine.Snapshot
	ArtworkURL string `json:"artworkUrl,omitempty"`
}

func (s *Server) auctionJSON(snap engine.Snapshot) auctionResponse {
	resp := auctionResponse{Snapshot: snap}
	if s.spaces != nil && snap.Gift.ID != "" {
		resp.ArtworkURL = s.spaces.GiftArtworkURL(snap.Gift.ID)
	}
	return resp
}

func (s *Server) listAuctions(c *fiber.Ctx) error {
	engines := s.registry.Search(c.Query("q"))
	auctions := make([]auctionResponse, 0, len(engines))
	for _, e := range engines {
		auctions = append(auctions, s.auctionJSON(e.Snapshot()))
	}
	return c.JSON(fiber.Map{"auctions": auctions})
}

func (s *Server) createAuction(c *fiber.Ctx) error {
	var req createAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.Gift.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and gift are required"})
	}

	e, err := s.registry.Create(c.Context(), req.Name, req.Gift, req.Plan)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(s.auctionJSON(e.Snapshot()))
}

func (s *Server) getAuction(c *fiber.Ctx) error {
	id := c.Params("id")

	if e, ok := s.registry.Get(id); ok {
		return c.JSON(s.auctionJSON(e.Snapshot()))
	}
	if snap, ok := s.registry.Finished(id); ok {
		return c.JSON(s.auctionJSON(snap))
	}

	// Older finished auctions live only in the repository.
	record, err := s.auctions.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrAuctionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "auction not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load auction"})
	}
	return c.JSON(record)
}

func (s *Server) getLeaderboard(c *fiber.Ctx) error {
	e, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "auction not found"})
	}
	snap := e.Snapshot()
	return c.JSON(fiber.Map{
		"round":        snap.CurrentRound,
		"roundEndTime": snap.RoundEndTime,
		"leaderboard":  snap.Leaderboard,
	})
}

func (s *Server) startAuction(c *fiber.Ctx) error {
	e, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "auction not found"})
	}

	if err := e.StartRound(c.Context()); err != nil {
		if errors.Is(err, engine.ErrRoundRunning) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		logger.LogError("Failed to start round", err, "auction_id", e.ID())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to start round"})
	}
	return c.JSON(s.auctionJSON(e.Snapshot()))
}

// giftIDFor resolves which gift an auction sells, whether the auction is
// live, parked, or archived.
func (s *Server) giftIDFor(c *fiber.Ctx, auctionID string) (string, bool) {
	if e, ok := s.registry.Get(auctionID); ok {
		return e.Snapshot().Gift.ID, true
	}
	if snap, ok := s.registry.Finished(auctionID); ok {
		return snap.Gift.ID, true
	}
	record, err := s.auctions.GetByID(c.Context(), auctionID)
	if err != nil {
		return "", false
	}
	return record.Gift.ID, true
}

func (s *Server) uploadGiftArtwork(c *fiber.Ctx) error {
	if s.spaces == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "artwork storage is not configured"})
	}

	giftID, ok := s.giftIDFor(c, c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "auction not found"})
	}

	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "artwork body is empty"})
	}
	contentType := c.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = "image/png"
	}

	if err := s.spaces.UploadGiftArtwork(c.Context(), giftID, body, contentType); err != nil {
		logger.LogError("Failed to upload gift artwork", err, "gift_id", giftID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store artwork"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": s.spaces.GiftArtworkURL(giftID)})
}

func (s *Server) deleteGiftArtwork(c *fiber.Ctx) error {
	if s.spaces == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "artwork storage is not configured"})
	}

	giftID, ok := s.giftIDFor(c, c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "auction not found"})
	}

	if err := s.spaces.DeleteGiftArtwork(c.Context(), giftID); err != nil {
		logger.LogError("Failed to delete gift artwork", err, "gift_id", giftID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete artwork"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) uploadAvatar(c *fiber.Ctx) error {
	if s.spaces == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "avatar storage is not configured"})
	}

	userID := c.Params("id")
	user, err := s.users.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load user"})
	}

	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar body is empty"})
	}
	contentType := c.Get(fiber.HeaderContentType)
	if contentType == "" {
		contentType = "image/jpeg"
	}

	if err := s.spaces.UploadAvatar(c.Context(), user.ID, body, contentType); err != nil {
		logger.LogError("Failed to upload avatar", err, "user_id", user.ID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store avatar"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": s.spaces.AvatarURL(user.ID)})
}

func (s *Server) placeBid(c *fiber.Ctx) error {
	e, ok := s.registry.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "auction not found"})
	}

	var req placeBidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId is required"})
	}

	start := time.Now()
	bid, err := e.PlaceBid(req.UserID, req.Amount)
	logger.LogBid(e.ID(), req.UserID, req.Amount, time.Since(start), err)

	if err != nil {
		var bidErr *engine.BidError
		if errors.As(err, &bidErr) {
			return c.Status(bidStatus(bidErr.Kind)).JSON(fiber.Map{
				"ok":         false,
				"errorKind":  bidErr.Kind,
				"detail":     bidErr.Error(),
				"currentBid": bidErr.CurrentBid,
				"deficit":    bidErr.Deficit,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "bid failed"})
	}

	// Best effort presence update; the bid already stands.
	_ = s.users.TouchLastActive(c.Context(), req.UserID)

	return c.JSON(fiber.Map{"ok": true, "newBid": bid})
}

func bidStatus(kind engine.ErrorKind) int {
	switch kind {
	case engine.ErrNonPositive:
		return fiber.StatusBadRequest
	case engine.ErrInsufficientFunds:
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusConflict
	}
}

func (s *Server) streamEvents(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := s.registry.Get(id); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "auction not found"})
	}

	ch, cancel := s.hub.Subscribe(id)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", data)
				if err := w.Flush(); err != nil {
					return
				}
			case <-keepalive.C:
				fmt.Fprint(w, ": keepalive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
