// relay-emulator is a local stand-in for the production email relay.
// It accepts the relay's send contract, logs each message instead of
// delivering it, and answers success so the full send flow can be
// exercised without touching SMTP.
package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type sendRequest struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
	Text     string `json:"text"`
	From     string `json:"from"`
	FromName string `json:"fromName"`
}

type sendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

func main() {
	addr := flag.String("addr", ":3001", "listen address")
	flag.Parse()

	e := echo.New()
	e.HideBanner = true

	e.POST("/send-email", func(c echo.Context) error {
		var req sendRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, sendResponse{Error: "invalid request body"})
		}
		if req.To == "" {
			return c.JSON(http.StatusOK, sendResponse{Error: "recipient is required"})
		}

		id := uuid.New().String()
		log.Printf("email to=%s subject=%q from=%s <%s> id=%s text=%d bytes html=%d bytes",
			req.To, req.Subject, req.FromName, req.From, id, len(req.Text), len(req.HTML))

		return c.JSON(http.StatusOK, sendResponse{
			Success:   true,
			MessageID: id,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	})

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	log.Printf("relay emulator listening on %s", *addr)
	if err := e.Start(*addr); err != nil {
		log.Fatal(err)
	}
}
