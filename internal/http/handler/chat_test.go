package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mindsukoon.app/companion/internal/companion"
	"mindsukoon.app/companion/internal/http/dto"
	"mindsukoon.app/companion/internal/http/handler"
	"mindsukoon.app/companion/internal/model"
	"mindsukoon.app/companion/internal/service"
)

var _ = Describe("ChatHandler", func() {
	var (
		router *gin.Engine
		svc    *mockChatService
	)

	BeforeEach(func() {
		router = gin.New()
		svc = &mockChatService{}
		h := handler.NewChatHandler(svc)
		router.POST("/chat", h.Chat)
		router.POST("/sessions", h.CreateSession)
		router.GET("/sessions/:id/history", h.History)
		router.DELETE("/sessions/:id", h.EndSession)
	})

	post := func(path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			Expect(json.NewEncoder(&buf).Encode(b)).To(Succeed())
		}
		req := httptest.NewRequest(http.MethodPost, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("creates a session with the welcome message", func() {
		w := post("/sessions", "")

		Expect(w.Code).To(Equal(http.StatusCreated))
		var resp dto.SessionResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.SessionID).NotTo(BeEmpty())
		Expect(resp.Welcome).To(Equal(companion.WelcomeMessage))
	})

	It("returns the reply with risk level and path", func() {
		var gotSession, gotMessage string
		svc.chatFn = func(_ context.Context, sessionID, message string) (*model.ChatReply, error) {
			gotSession, gotMessage = sessionID, message
			return &model.ChatReply{SessionID: "s-new", TurnID: 99, Reply: "I'm here.", RiskLevel: "low_risk", Path: "tool"}, nil
		}

		w := post("/chat", map[string]string{"message": "  I feel stressed  "})

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(gotSession).To(BeEmpty())
		Expect(gotMessage).To(Equal("I feel stressed"))

		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["session_id"]).To(Equal("s-new"))
		Expect(resp["turn_id"]).To(Equal("99"))
		Expect(resp["reply"]).To(Equal("I'm here."))
		Expect(resp["risk_level"]).To(Equal("low_risk"))
		Expect(resp["path"]).To(Equal("tool"))
	})

	It("returns 400 on malformed JSON", func() {
		w := post("/chat", `{`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	DescribeTable("rejects invalid requests",
		func(body map[string]string) {
			w := post("/chat", body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		},
		Entry("missing message", map[string]string{}),
		Entry("blank message", map[string]string{"message": "   "}),
		Entry("oversized message", map[string]string{"message": strings.Repeat("a", dto.MaxMessageLength+1)}),
		Entry("malformed session id", map[string]string{"session_id": "abc", "message": "hi"}),
	)

	It("returns 404 for unknown sessions", func() {
		svc.chatFn = func(context.Context, string, string) (*model.ChatReply, error) {
			return nil, service.ErrSessionNotFound
		}

		w := post("/chat", map[string]string{"session_id": "2d1f6c1a-0f7e-4f38-9e56-6e4d7f0c2b11", "message": "hi"})
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("returns 500 when the service fails", func() {
		svc.chatFn = func(context.Context, string, string) (*model.ChatReply, error) {
			return nil, errors.New("boom")
		}

		w := post("/chat", map[string]string{"message": "hi"})
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})

	It("returns session history", func() {
		svc.historyFn = func(context.Context, string) ([]companion.Turn, error) {
			return []companion.Turn{{User: "hi", Assistant: "hello"}}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/sessions/abc/history", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp dto.HistoryResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.SessionID).To(Equal("abc"))
		Expect(resp.Turns).To(Equal([]dto.TurnResponse{{User: "hi", Assistant: "hello"}}))
	})

	It("ends sessions", func() {
		svc.endFn = func(context.Context, string) error { return service.ErrSessionNotFound }

		req := httptest.NewRequest(http.MethodDelete, "/sessions/abc", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
