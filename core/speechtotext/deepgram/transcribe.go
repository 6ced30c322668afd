package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-voiceloop/core/audio"
	"github.com/koscakluka/ema-voiceloop/core/speechtotext"
)

type session struct {
	recognizer *Recognizer
	callbacks  callbacks
	wsConfig   wsConfig

	connMu    sync.Mutex
	conn      *websocket.Conn
	lastMsgTs time.Time

	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}

	// results is only touched by the read loop.
	results resultLog
}

type callbacks struct {
	startCallback  func()
	resultCallback func(resultIndex int, results []speechtotext.Result)
	errorCallback  func(kind speechtotext.ErrorKind)
	endCallback    func()
}

type wsConfig struct {
	language       string
	continuous     bool
	interimResults bool
}

func newCallbackConfig(options speechtotext.RecognitionOptions) (callbacks, wsConfig) {
	c := callbacks{
		startCallback:  func() {},
		resultCallback: func(int, []speechtotext.Result) {},
		errorCallback:  func(speechtotext.ErrorKind) {},
		endCallback:    func() {},
	}
	if options.StartCallback != nil {
		c.startCallback = options.StartCallback
	}
	if options.ResultCallback != nil {
		c.resultCallback = options.ResultCallback
	}
	if options.ErrorCallback != nil {
		c.errorCallback = options.ErrorCallback
	}
	if options.EndCallback != nil {
		c.endCallback = options.EndCallback
	}

	return c, wsConfig{
		language:       options.Language,
		continuous:     options.Continuous,
		interimResults: options.InterimResults,
	}
}

func newSession(recognizer *Recognizer, options speechtotext.RecognitionOptions) *session {
	callbacks, wsConfig := newCallbackConfig(options)
	return &session{
		recognizer: recognizer,
		callbacks:  callbacks,
		wsConfig:   wsConfig,
		stopped:    make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (s *session) run(ctx context.Context) {
	defer close(s.done)
	defer s.callbacks.endCallback()

	stream, err := s.recognizer.capture.RequestStream(ctx)
	if err != nil {
		logger.Warn("failed to acquire audio stream", "error", err)
		s.callbacks.errorCallback(captureErrorKind(err))
		return
	}
	defer func() {
		if err := stream.Stop(); err != nil {
			logger.Debug("failed to stop audio stream", "error", err)
		}
	}()

	if s.isStopped() {
		return
	}

	encoding, err := convertEncoding(stream.EncodingInfo())
	if err != nil {
		logger.Warn("unsupported capture encoding", "error", err)
		s.callbacks.errorCallback(speechtotext.ErrorAudioCapture)
		return
	}

	listenURL, err := buildListenURL(s.recognizer.endpoint, s.recognizer.model, *encoding, s.wsConfig)
	if err != nil {
		logger.Error("invalid deepgram endpoint", "error", err)
		s.callbacks.errorCallback(speechtotext.ErrorNetwork)
		return
	}

	conn, _, err := s.recognizer.dialer.DialContext(ctx, listenURL,
		http.Header{"Authorization": {"Token " + s.recognizer.apiKey}})
	if err != nil {
		logger.Warn("failed to open socket connection to deepgram", "error", err)
		s.callbacks.errorCallback(speechtotext.ErrorNetwork)
		return
	}
	defer conn.Close()

	s.connMu.Lock()
	s.conn = conn
	s.lastMsgTs = time.Now()
	s.connMu.Unlock()

	// Stop may have raced with the dial and found no connection to close.
	select {
	case <-s.stopped:
		s.sendCloseStream()
	default:
	}

	s.callbacks.startCallback()

	unlisten := stream.Listen(func(frame []byte) {
		if err := s.sendAudio(frame); err != nil {
			logger.Debug("failed to send audio to deepgram", "error", err)
		}
	})
	defer unlisten()

	keepAliveCtx, cancelKeepAlive := context.WithCancel(ctx)
	defer cancelKeepAlive()
	go s.keepAlive(keepAliveCtx)

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop()
		case <-s.done:
		}
	}()

	s.readMessages(conn)
}

func (s *session) readMessages(conn *websocket.Conn) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !s.isStopped() {
				logger.Warn("failed to read deepgram websocket message", "error", err)
				s.callbacks.errorCallback(speechtotext.ErrorNetwork)
			}
			return
		}
		if msgType == websocket.BinaryMessage {
			continue
		}

		s.processMessage(msg)
	}
}

func (s *session) processMessage(msg []byte) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Warn("failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Warn("failed to unmarshal deepgram message", "error", err)
			return
		}

		transcript := ""
		if len(msgResp.Channel.Alternatives) > 0 {
			transcript = strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		}
		if !msgResp.IsFinal && transcript == "" {
			return
		}

		resultIndex, result := s.results.apply(transcript, msgResp.IsFinal)
		s.callbacks.resultCallback(resultIndex, []speechtotext.Result{result})

		if msgResp.IsFinal && transcript != "" && !s.wsConfig.continuous {
			_ = s.Stop()
		}
	}
}

// resultLog numbers the results of a session. Only the trailing interim
// result can still change, so finalized results are counted instead of
// kept and indexes keep growing for the whole session.
type resultLog struct {
	finalized int
}

// apply folds a transcript into the log. A pending interim result is
// replaced in place, otherwise the transcript starts a new result. It
// returns the index of the changed result.
func (l *resultLog) apply(transcript string, isFinal bool) (int, speechtotext.Result) {
	index := l.finalized
	if isFinal {
		l.finalized++
	}
	return index, speechtotext.Result{Transcript: transcript, IsFinal: isFinal}
}

// Stop asks deepgram to flush outstanding results and close the stream. The
// connection is force-closed if the server does not close it in time.
func (s *session) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopped)
		err = s.sendCloseStream()

		go func() {
			select {
			case <-s.done:
			case <-time.After(s.recognizer.closeTimeout):
				s.connMu.Lock()
				if s.conn != nil {
					_ = s.conn.Close()
				}
				s.connMu.Unlock()
			}
		}()
	})
	return err
}

func (s *session) isStopped() bool {
	select {
	case <-s.stopped:
		return true
	default:
		return false
	}
}

func (s *session) sendCloseStream() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return nil
	}
	if err := s.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		return fmt.Errorf("failed to close deepgram stream through websocket: %w", err)
	}
	return nil
}

func (s *session) sendAudio(audio []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return nil
	}

	s.lastMsgTs = time.Now()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

func (s *session) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(s.recognizer.keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil && time.Since(s.lastMsgTs) >= s.recognizer.keepAliveInterval {
				if err := s.conn.WriteJSON(struct {
					Type string `json:"type"`
				}{Type: "KeepAlive"}); err != nil {
					logger.Debug("failed to write keepalive to deepgram", "error", err)
				}
				s.lastMsgTs = time.Now()
			}
			s.connMu.Unlock()
		}
	}
}

func buildListenURL(endpoint, model string, encoding encodingInfo, config wsConfig) (string, error) {
	listenURL, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse listen endpoint: %w", err)
	}

	queryParams := listenURL.Query()
	queryParams.Set("encoding", encoding.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(encoding.SampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", model)
	if config.language != "" {
		queryParams.Set("language", config.language)
	}
	queryParams.Set("smart_format", "true")
	if config.interimResults {
		queryParams.Set("interim_results", "true")
	}
	queryParams.Set("endpointing", "300")

	listenURL.RawQuery = queryParams.Encode()
	return listenURL.String(), nil
}

func captureErrorKind(err error) speechtotext.ErrorKind {
	if errors.Is(err, audio.ErrPermissionDenied) {
		return speechtotext.ErrorNotAllowed
	}
	return speechtotext.ErrorAudioCapture
}
