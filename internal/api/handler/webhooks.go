package handler

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"strings"

	"igire/backend/internal/complaint"
	"igire/backend/internal/localization"
	"igire/backend/internal/models"
	"igire/backend/internal/sms"
	"igire/backend/internal/ussd"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// USSDCallback serves the gateway session callback. Form-encoded callbacks get
// the raw "CON ..."/"END ..." body the gateway expects; JSON callers get {"response": ...}.
func (h *Handler) USSDCallback(c *gin.Context) {
	var req ussd.Request
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "invalid ussd payload")
		return
	}

	resp := h.USSD.Handle(c.Request.Context(), req).String()
	if c.ContentType() == gin.MIMEJSON {
		c.JSON(http.StatusOK, gin.H{"response": resp})
		return
	}
	c.String(http.StatusOK, resp)
}

type incomingSMS struct {
	From   string `json:"from" form:"from"`
	To     string `json:"to" form:"to"`
	Text   string `json:"text" form:"text"`
	ID     string `json:"id" form:"id"`
	LinkID string `json:"linkId" form:"linkId"`
	Date   string `json:"date" form:"date"`
}

// IncomingSMS turns "IGIRE <CATEGORY> <LOCATION> <DESCRIPTION>" messages into
// complaints. The gateway always gets 200 so it does not redeliver.
func (h *Handler) IncomingSMS(c *gin.Context) {
	var msg incomingSMS
	if err := c.ShouldBind(&msg); err != nil || msg.From == "" {
		badRequest(c, "from and text are required")
		return
	}
	ctx := c.Request.Context()
	lang := localization.DefaultLanguage

	parsed, err := sms.Parse(msg.Text)
	if err != nil {
		h.Logger.Info("unparseable sms", zap.String("from", msg.From), zap.Error(err))
		h.reply(ctx, msg.From, h.Texts.GetString(lang, "sms.bad_format"))
		c.JSON(http.StatusOK, gin.H{"status": "rejected", "error": err.Error()})
		return
	}

	created, err := h.Complaints.Submit(ctx, complaint.Submission{
		ReporterPhone: msg.From,
		Description:   parsed.Description,
		Category:      parsed.Category,
		District:      parsed.Location,
		Channel:       models.ChannelSMS,
		Language:      lang,
		Meta: map[string]interface{}{
			"from":      msg.From,
			"to":        msg.To,
			"messageId": msg.ID,
			"linkId":    msg.LinkID,
		},
	})
	if err != nil {
		h.Logger.Error("failed to submit sms complaint", zap.String("from", msg.From), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "failed"})
		return
	}

	h.reply(ctx, msg.From, h.Texts.Format(lang, "sms.submitted", created.TrackingCode, created.Category))
	c.JSON(http.StatusOK, gin.H{"status": "created", "trackingCode": created.TrackingCode})
}

type sendSMSRequest struct {
	To   string `json:"to" binding:"required"`
	Text string `json:"text" binding:"required"`
}

// SendSMS lets staff message a reporter directly.
func (h *Handler) SendSMS(c *gin.Context) {
	var req sendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "to and text are required")
		return
	}
	if h.SMS == nil {
		badRequest(c, sms.ErrNotConfigured.Error())
		return
	}

	if err := h.SMS.Send(c.Request.Context(), req.To, req.Text); err != nil {
		if errors.Is(err, sms.ErrNotConfigured) {
			badRequest(c, err.Error())
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// reply is best-effort: a failed SMS never fails the webhook.
func (h *Handler) reply(ctx context.Context, to, text string) {
	if h.SMS == nil {
		return
	}
	if err := h.SMS.Send(ctx, to, text); err != nil {
		h.Logger.Warn("failed to send sms reply", zap.String("to", to), zap.Error(err))
	}
}

type voiceCallback struct {
	SessionID    string `form:"sessionId"`
	IsActive     string `form:"isActive"`
	CallerNumber string `form:"callerNumber"`
	RecordingURL string `form:"recordingUrl"`
}

type voiceResponse struct {
	XMLName xml.Name     `xml:"Response"`
	Say     string       `xml:"Say,omitempty"`
	Record  *voiceRecord `xml:"Record,omitempty"`
}

type voiceRecord struct {
	FinishOnKey string `xml:"finishOnKey,attr"`
	MaxLength   int    `xml:"maxLength,attr"`
	TrimSilence bool   `xml:"trimSilence,attr"`
	PlayBeep    bool   `xml:"playBeep,attr"`
}

const voiceMaxSeconds = 120

// VoiceCallback asks the caller to record a complaint. Once the gateway posts
// the recording URL the recording is transcribed and submitted in the
// background, and the caller receives the tracking code by SMS.
func (h *Handler) VoiceCallback(c *gin.Context) {
	var call voiceCallback
	if err := c.ShouldBind(&call); err != nil {
		badRequest(c, "invalid voice payload")
		return
	}
	lang := localization.DefaultLanguage

	if call.RecordingURL == "" {
		c.XML(http.StatusOK, voiceResponse{
			Say: h.Texts.GetString(lang, "voice.prompt"),
			Record: &voiceRecord{
				FinishOnKey: "#",
				MaxLength:   voiceMaxSeconds,
				TrimSilence: true,
				PlayBeep:    true,
			},
		})
		return
	}

	sub := complaint.Submission{
		ReporterPhone: strings.TrimSpace(call.CallerNumber),
		Channel:       models.ChannelVoice,
		Meta: map[string]interface{}{
			"sessionId":    call.SessionID,
			"callerNumber": call.CallerNumber,
		},
	}
	h.background(func() {
		ctx := context.Background()
		created, err := h.Complaints.SubmitRecording(ctx, sub, call.RecordingURL)
		if err != nil {
			h.Logger.Error("failed to submit voice complaint",
				zap.String("session_id", call.SessionID), zap.Error(err))
			return
		}
		h.reply(ctx, sub.ReporterPhone, h.Texts.Format(lang, "voice.submitted", created.TrackingCode))
	})

	c.XML(http.StatusOK, voiceResponse{Say: h.Texts.GetString(lang, "voice.thanks")})
}
