package http

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "advent-raffle-backend/internal/common/errors"
	"advent-raffle-backend/internal/common/middleware"
	"advent-raffle-backend/internal/domain/calendar"
	"advent-raffle-backend/internal/service/eligibility"
	"advent-raffle-backend/internal/service/mint"
	"advent-raffle-backend/internal/service/raffle"
	"advent-raffle-backend/internal/service/registration"
	"advent-raffle-backend/internal/service/winner"
)

type RaffleService interface {
	Allocate(ctx context.Context, req raffle.AllocationRequest) (*raffle.AllocationResult, error)
}

type WinnerService interface {
	QueryWinner(ctx context.Context, addr string, door int, now time.Time) (*winner.Result, error)
}

type EligibilityService interface {
	Check(ctx context.Context, addr string, now time.Time) (*eligibility.Eligibility, error)
}

type RegistrationService interface {
	IsRegistered(ctx context.Context, addr string) (bool, error)
	Register(ctx context.Context, req registration.RegisterRequest, now time.Time) (*calendar.Participant, error)
}

type MintService interface {
	RecordMint(ctx context.Context, addr string, door int, now time.Time) (*mint.Result, error)
	OpenedDoors(ctx context.Context, addr string) ([]calendar.MintRecord, error)
}

type CatalogService interface {
	ListByDoor(ctx context.Context, door int) ([]calendar.Prize, error)
}

type handlers struct {
	raffle       RaffleService
	winners      WinnerService
	eligibility  EligibilityService
	registration RegistrationService
	mints        MintService
	catalog      CatalogService
	now          func() time.Time
}

// RaffleRunRequest optionally selects a door other than today's.
type RaffleRunRequest struct {
	Door int `json:"door"`
}

// RaffleRunResponse is the outcome of a raffle run.
type RaffleRunResponse struct {
	Success      bool                        `json:"success"`
	Status       string                      `json:"status"`
	Day          int                         `json:"day"`
	Door         int                         `json:"door"`
	DayDate      string                      `json:"dayDate"`
	WinnersCount int                         `json:"winnersCount"`
	Winners      []calendar.WinnerAssignment `json:"winners"`
}

// WinnerCheckRequest asks whether a wallet won a door.
type WinnerCheckRequest struct {
	PublicKey  string `json:"publicKey" binding:"required"`
	DoorNumber int    `json:"doorNumber"`
}

// WinnerCheckResponse wraps winner.Result.
type WinnerCheckResponse struct {
	Success bool `json:"success"`
	*winner.Result
}

// WalletRequest carries a wallet public key.
type WalletRequest struct {
	PublicKey string `json:"publicKey" binding:"required"`
}

// EligibilityResponse wraps eligibility.Eligibility.
type EligibilityResponse struct {
	Success bool `json:"success"`
	*eligibility.Eligibility
}

// RegistrationStatusResponse reports whether a wallet is an active participant.
type RegistrationStatusResponse struct {
	Success      bool   `json:"success"`
	Wallet       string `json:"wallet"`
	IsRegistered bool   `json:"isRegistered"`
}

// RegisterResponse returns the created participant.
type RegisterResponse struct {
	Success     bool                  `json:"success"`
	Participant *calendar.Participant `json:"participant"`
}

// MintResponse wraps mint.Result.
type MintResponse struct {
	Success bool `json:"success"`
	*mint.Result
}

// OpenedDoorsResponse lists a wallet's minted doors.
type OpenedDoorsResponse struct {
	Success bool                  `json:"success"`
	Wallet  string                `json:"wallet"`
	Doors   []int                 `json:"doors"`
	Mints   []calendar.MintRecord `json:"mints"`
}

// PrizesResponse lists a door's catalog.
type PrizesResponse struct {
	Success bool             `json:"success"`
	Door    int              `json:"door"`
	Prizes  []calendar.Prize `json:"prizes"`
}

func doorParam(raw string) (int, error) {
	door, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Newf(apperrors.ErrCodeInvalidDoor, "door must be between 1 and %d", calendar.DoorCount).
			WithDetail("door", raw)
	}
	return door, nil
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid request body")
	}
	return nil
}

// runRaffle godoc
// @Summary      Run the raffle for a door
// @Description  Draws and persists the winners of a door. Door defaults to today's. A door that already has winners returns status already_allocated.
// @Tags         raffle
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        door     query     int               false  "Door number (1-24)"
// @Param        request  body      RaffleRunRequest  false  "Door selection"
// @Success      200      {object}  RaffleRunResponse
// @Failure      401      {object}  middleware.ErrorResponse
// @Failure      409      {object}  middleware.ErrorResponse
// @Failure      422      {object}  middleware.ErrorResponse
// @Router       /raffle/run [post]
func (h *handlers) runRaffle(c *gin.Context) {
	req := raffle.AllocationRequest{
		Token: middleware.GetBearerToken(c),
		Now:   h.now(),
	}

	if raw := c.Query("door"); raw != "" {
		door, err := doorParam(raw)
		if err != nil {
			_ = c.Error(err)
			return
		}
		req.Door = door
	} else if c.Request.ContentLength != 0 {
		var body RaffleRunRequest
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid request body"))
			return
		}
		req.Door = body.Door
	}

	res, err := h.raffle.Allocate(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(nethttp.StatusOK, RaffleRunResponse{
		Success:      true,
		Status:       res.Status,
		Day:          res.Day,
		Door:         res.Door,
		DayDate:      res.DayDate,
		WinnersCount: res.WinnersCount(),
		Winners:      res.Winners,
	})
}

// checkWinner godoc
// @Summary      Check a wallet's result for a door
// @Tags         winners
// @Accept       json
// @Produce      json
// @Param        request  body      WinnerCheckRequest  true  "Wallet and door"
// @Success      200      {object}  WinnerCheckResponse
// @Failure      400      {object}  middleware.ErrorResponse
// @Failure      403      {object}  middleware.ErrorResponse
// @Failure      425      {object}  middleware.ErrorResponse
// @Router       /winners/check [post]
func (h *handlers) checkWinner(c *gin.Context) {
	var req WinnerCheckRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	h.respondWinner(c, req.PublicKey, req.DoorNumber)
}

// getWinner godoc
// @Summary      Check a wallet's result for a door
// @Tags         winners
// @Produce      json
// @Param        wallet  path      string  true  "Wallet public key"
// @Param        door    path      int     true  "Door number (1-24)"
// @Success      200     {object}  WinnerCheckResponse
// @Failure      400     {object}  middleware.ErrorResponse
// @Failure      403     {object}  middleware.ErrorResponse
// @Failure      425     {object}  middleware.ErrorResponse
// @Router       /winners/{wallet}/doors/{door} [get]
func (h *handlers) getWinner(c *gin.Context) {
	door, err := doorParam(c.Param("door"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respondWinner(c, c.Param("wallet"), door)
}

func (h *handlers) respondWinner(c *gin.Context, wallet string, door int) {
	res, err := h.winners.QueryWinner(c.Request.Context(), wallet, door, h.now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(nethttp.StatusOK, WinnerCheckResponse{Success: true, Result: res})
}

// checkEligibility godoc
// @Summary      Check whether a wallet may register
// @Description  Eligible wallets receive a single-use registration ticket.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request  body      WalletRequest  true  "Wallet"
// @Success      200      {object}  EligibilityResponse
// @Failure      400      {object}  middleware.ErrorResponse
// @Router       /eligibility [post]
func (h *handlers) checkEligibility(c *gin.Context) {
	var req WalletRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := h.eligibility.Check(c.Request.Context(), req.PublicKey, h.now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(nethttp.StatusOK, EligibilityResponse{Success: true, Eligibility: res})
}

// getRegistration godoc
// @Summary      Registration status of a wallet
// @Tags         registrations
// @Produce      json
// @Param        wallet  path      string  true  "Wallet public key"
// @Success      200     {object}  RegistrationStatusResponse
// @Failure      400     {object}  middleware.ErrorResponse
// @Router       /registrations/{wallet} [get]
func (h *handlers) getRegistration(c *gin.Context) {
	wallet := c.Param("wallet")
	ok, err := h.registration.IsRegistered(c.Request.Context(), wallet)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(nethttp.StatusOK, RegistrationStatusResponse{Success: true, Wallet: wallet, IsRegistered: ok})
}

// register godoc
// @Summary      Register a wallet
// @Description  Redeems an eligibility ticket and mints the registration NFT.
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Param        request  body      registration.RegisterRequest  true  "Wallet and ticket"
// @Success      201      {object}  RegisterResponse
// @Failure      401      {object}  middleware.ErrorResponse
// @Failure      403      {object}  middleware.ErrorResponse
// @Failure      409      {object}  middleware.ErrorResponse
// @Failure      502      {object}  middleware.ErrorResponse
// @Router       /registrations [post]
func (h *handlers) register(c *gin.Context) {
	var req registration.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	p, err := h.registration.Register(c.Request.Context(), req, h.now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(nethttp.StatusCreated, RegisterResponse{Success: true, Participant: p})
}

// mintDoor godoc
// @Summary      Open today's door
// @Description  Mints the door NFT for a registered wallet. Repeating the call returns the existing mint.
// @Tags         doors
// @Accept       json
// @Produce      json
// @Param        door     path      int            true  "Door number (1-24)"
// @Param        request  body      WalletRequest  true  "Wallet"
// @Success      200      {object}  MintResponse   "Existing mint"
// @Success      201      {object}  MintResponse   "New mint"
// @Failure      403      {object}  middleware.ErrorResponse
// @Failure      409      {object}  middleware.ErrorResponse
// @Failure      425      {object}  middleware.ErrorResponse
// @Router       /doors/{door}/mint [post]
func (h *handlers) mintDoor(c *gin.Context) {
	door, err := doorParam(c.Param("door"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req WalletRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	res, err := h.mints.RecordMint(c.Request.Context(), req.PublicKey, door, h.now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	status := nethttp.StatusOK
	if res.Created {
		status = nethttp.StatusCreated
	}
	c.JSON(status, MintResponse{Success: true, Result: res})
}

// openedDoors godoc
// @Summary      Doors opened by a wallet
// @Tags         doors
// @Produce      json
// @Param        wallet  query     string  true  "Wallet public key"
// @Success      200     {object}  OpenedDoorsResponse
// @Failure      400     {object}  middleware.ErrorResponse
// @Router       /doors/opened [get]
func (h *handlers) openedDoors(c *gin.Context) {
	wallet := c.Query("wallet")
	list, err := h.mints.OpenedDoors(c.Request.Context(), wallet)
	if err != nil {
		_ = c.Error(err)
		return
	}
	doors := make([]int, 0, len(list))
	for _, m := range list {
		doors = append(doors, m.Door)
	}
	c.JSON(nethttp.StatusOK, OpenedDoorsResponse{Success: true, Wallet: wallet, Doors: doors, Mints: list})
}

// doorPrizes godoc
// @Summary      Prizes behind a door
// @Tags         doors
// @Produce      json
// @Param        door  path      int  true  "Door number (1-24)"
// @Success      200   {object}  PrizesResponse
// @Failure      400   {object}  middleware.ErrorResponse
// @Router       /doors/{door}/prizes [get]
func (h *handlers) doorPrizes(c *gin.Context) {
	door, err := doorParam(c.Param("door"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	prizes, err := h.catalog.ListByDoor(c.Request.Context(), door)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if prizes == nil {
		prizes = []calendar.Prize{}
	}
	c.JSON(nethttp.StatusOK, PrizesResponse{Success: true, Door: door, Prizes: prizes})
}
