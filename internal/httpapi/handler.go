package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/stepup/services/handoff"
	"github.com/tech-arch1tect/stepup/services/logging"
	"github.com/tech-arch1tect/stepup/services/trusteddevice"
	"github.com/tech-arch1tect/stepup/services/verification"
	"github.com/tech-arch1tect/stepup/session"
	"go.uber.org/zap"
)

// Handler exposes the verification flow over JSON HTTP. The realm path
// parameter selects the user or admin service; everything else is
// shared.
type Handler struct {
	services *verification.Services
	handoff  *handoff.Service
	devices  *trusteddevice.Service
	logger   *logging.Service
}

func NewHandler(services *verification.Services, handoffSvc *handoff.Service, devices *trusteddevice.Service, logger *logging.Service) *Handler {
	return &Handler{
		services: services,
		handoff:  handoffSvc,
		devices:  devices,
		logger:   logger,
	}
}

type sendRequest struct {
	SubjectID   string `json:"subject_id"`
	Email       string `json:"email"`
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fingerprint"`
}

type verifyRequest struct {
	Code        string `json:"code"`
	TrustDevice bool   `json:"trust_device"`
	DeviceLabel string `json:"device_label"`
}

type apiResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
	WaitTime   string `json:"wait_time,omitempty"`
	Trusted    bool   `json:"trusted,omitempty"`
	Token      string `json:"token,omitempty"`
}

func (h *Handler) realmService(c echo.Context) (*verification.Service, verification.Realm, error) {
	switch c.Param("realm") {
	case "user":
		return h.services.User, verification.RealmUser, nil
	case "admin":
		return h.services.Admin, verification.RealmAdmin, nil
	default:
		return nil, "", echo.NewHTTPError(http.StatusNotFound, "unknown realm")
	}
}

func validPurpose(p string) bool {
	switch verification.Purpose(p) {
	case verification.PurposeLogin, verification.PurposeDeviceTrust, verification.PurposePasswordReset:
		return true
	}
	return false
}

// Send issues a verification code for the subject unless their device
// is already trusted. A trusted device short-circuits with a hand-off
// token and no store writes.
func (h *Handler) Send(c echo.Context) error {
	svc, realm, err := h.realmService(c)
	if err != nil {
		return err
	}

	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: "invalid request body"})
	}
	if req.SubjectID == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: "subject_id and email are required"})
	}
	if req.Purpose == "" {
		req.Purpose = string(verification.PurposeLogin)
	}
	if !validPurpose(req.Purpose) {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: "unknown purpose"})
	}

	if req.Fingerprint != "" && !svc.NeedsVerification(req.SubjectID, req.Fingerprint) {
		token, err := h.handoff.Issue(req.SubjectID, string(realm), req.Purpose)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, apiResponse{Error: "failed to issue hand-off token"})
		}
		return c.JSON(http.StatusOK, apiResponse{Success: true, Trusted: true, Token: token})
	}

	if manager := session.GetManager(c); manager != nil {
		manager.PutChallenge(c.Request().Context(), session.Challenge{
			SubjectID:   req.SubjectID,
			Realm:       string(realm),
			Purpose:     req.Purpose,
			Email:       req.Email,
			Fingerprint: req.Fingerprint,
		})
	}

	result, err := svc.SendCode(c.Request().Context(), req.SubjectID, req.Email, verification.Purpose(req.Purpose))
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrRateLimited):
			return c.JSON(http.StatusTooManyRequests, apiResponse{
				Error:      "تم تجاوز الحد المسموح من المحاولات",
				RetryAfter: result.RetryAfter,
				WaitTime:   result.WaitTime,
			})
		case errors.Is(err, verification.ErrEmailDispatchFailed):
			return c.JSON(http.StatusBadGateway, apiResponse{Error: verification.ErrEmailDispatchFailed.Error()})
		default:
			if h.logger != nil {
				h.logger.Error("send verification failed", zap.Error(err))
			}
			return c.JSON(http.StatusInternalServerError, apiResponse{Error: "internal error"})
		}
	}

	return c.JSON(http.StatusOK, apiResponse{Success: true, RetryAfter: result.RetryAfter})
}

// Verify redeems a code against the pending challenge. Without a
// challenge in the session the request is rejected before any store
// access.
func (h *Handler) Verify(c echo.Context) error {
	svc, realm, err := h.realmService(c)
	if err != nil {
		return err
	}

	manager := session.GetManager(c)
	if manager == nil {
		return c.JSON(http.StatusPreconditionFailed, apiResponse{Error: "no pending verification"})
	}
	challenge, ok := manager.Challenge(c.Request().Context())
	if !ok || challenge.Realm != string(realm) {
		return c.JSON(http.StatusPreconditionFailed, apiResponse{Error: "no pending verification"})
	}

	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: "invalid request body"})
	}
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: "code is required"})
	}

	if err := svc.VerifyCode(c.Request().Context(), challenge.SubjectID, req.Code, verification.Purpose(challenge.Purpose)); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: verification.ErrInvalidOrExpiredCode.Error()})
	}

	token, err := h.handoff.Issue(challenge.SubjectID, challenge.Realm, challenge.Purpose)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to issue hand-off token", zap.Error(err))
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: "failed to issue hand-off token"})
	}

	if req.TrustDevice && challenge.Fingerprint != "" && h.devices != nil {
		if _, err := h.devices.Trust(challenge.SubjectID, challenge.Realm, challenge.Fingerprint, req.DeviceLabel); err != nil {
			// Trust is best effort; the verification itself succeeded.
			if h.logger != nil {
				h.logger.Warn("failed to trust device after verification", zap.Error(err))
			}
		}
	}

	manager.ClearChallenge(c.Request().Context())

	return c.JSON(http.StatusOK, apiResponse{Success: true, Token: token})
}

// Devices lists the subject's trusted devices in the requested realm.
func (h *Handler) Devices(c echo.Context) error {
	_, realm, err := h.realmService(c)
	if err != nil {
		return err
	}
	subjectID := c.Param("subject")
	if subjectID == "" {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: "subject is required"})
	}

	devices, err := h.devices.ListDevices(subjectID, string(realm))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "devices": devices})
}

// RevokeDevice drops one trusted device for the subject in the
// requested realm.
func (h *Handler) RevokeDevice(c echo.Context) error {
	_, realm, err := h.realmService(c)
	if err != nil {
		return err
	}
	subjectID := c.Param("subject")
	deviceID := c.Param("id")

	if err := h.devices.Revoke(subjectID, string(realm), deviceID); err != nil {
		if errors.Is(err, trusteddevice.ErrDeviceNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: "device not found"})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, apiResponse{Success: true})
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
