package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Ivan0402201/Taller/internal/application/dto"
	"github.com/Ivan0402201/Taller/pkg/config"
	"github.com/Ivan0402201/Taller/pkg/logger"
	"github.com/Ivan0402201/Taller/pkg/token"
)

// SessionHandler establece principales de sesión: con token de arranque
// válido se respeta su uid; sin token o con token inválido se emite un
// principal anónimo. El intercambio nunca rechaza por credenciales malas,
// solo degrada a anónimo.
type SessionHandler struct {
	cfg config.AuthConfig
	app string
	log *logger.Logger
}

// NewSessionHandler construye el handler de sesión.
func NewSessionHandler(cfg config.AuthConfig, appID string, log *logger.Logger) *SessionHandler {
	return &SessionHandler{cfg: cfg, app: appID, log: log}
}

// Exchange godoc
// @Summary      Establecer sesión
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SessionRequest  false  "token de arranque opcional"
// @Success      200   {object}  dto.SessionResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/session [post]
func (h *SessionHandler) Exchange(c *fiber.Ctx) error {
	var in dto.SessionRequest
	// cuerpo ausente = sesión anónima, no es error
	_ = c.BodyParser(&in)

	uid := ""
	anonimo := true
	if in.Token != "" {
		parsed, _, err := token.Parse(h.cfg.Secret, in.Token)
		if err == nil && parsed != "" {
			uid = parsed
			anonimo = false
		} else {
			h.log.Warn().Err(err).Msg("token de arranque inválido; degradando a sesión anónima")
		}
	}
	if uid == "" {
		uid = "anon-" + uuid.New().String()
	}

	sessionToken, err := token.Generate(h.cfg.Secret, uid, h.app, h.cfg.Issuer, h.cfg.ExpMinutes)
	if err != nil {
		h.log.Error().Err(err).Msg("emitir token de sesión")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo emitir la sesión"})
	}
	h.log.Info().Str("uid", uid).Bool("anonimo", anonimo).Msg("sesión establecida")
	return c.JSON(dto.SessionResponse{UID: uid, Anonimo: anonimo, SessionToken: sessionToken})
}
