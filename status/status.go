package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gr-butler/windmeter/buffer"
	"github.com/gr-butler/windmeter/convert"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"
)

// Source is where readings are served from.
type Source interface {
	Last() convert.Measurement
	Recent() buffer.Summary
	LastData() string
}

type Link interface {
	IsConnected() bool
}

type webdata struct {
	TimeNow    string  `json:"time"`
	Hostname   string  `json:"hostname"`
	WindSpeed  float64 `json:"wind_speed"`
	WindAvg    float64 `json:"wind_speed_avg"`
	WindGust   float64 `json:"wind_gust"`
	Milliamps  float64 `json:"milliamps"`
	Millivolts int     `json:"millivolts"`
	Filtered   int     `json:"filtered"`
	Fault      string  `json:"fault"`
	Connected  bool    `json:"connected"`
}

type request struct {
	path  string
	reply chan response
}

type response struct {
	status      int
	contentType string
	body        []byte
}

// Server answers status requests from inside the control loop. Handlers queue
// a request and wait for Service to answer it, so readings are never touched
// from the HTTP goroutines.
type Server struct {
	source   Source
	link     Link
	hostname string
	clock    clockwork.Clock
	timeout  time.Duration
	requests chan request
	mux      *http.ServeMux
}

func NewServer(source Source, link Link, hostname string, metrics bool, timeout time.Duration, clock clockwork.Clock) *Server {
	s := &Server{
		source:   source,
		link:     link,
		hostname: hostname,
		clock:    clock,
		timeout:  timeout,
		requests: make(chan request, 4),
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("/", s.handler)
	if metrics {
		s.mux.Handle("/metrics", promhttp.Handler())
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handler(rw http.ResponseWriter, r *http.Request) {
	req := request{path: r.URL.Path, reply: make(chan response, 1)}
	select {
	case s.requests <- req:
	default:
		http.Error(rw, "busy", http.StatusServiceUnavailable)
		return
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	select {
	case resp := <-req.reply:
		rw.Header().Set("Content-Type", resp.contentType)
		rw.WriteHeader(resp.status)
		_, _ = rw.Write(resp.body) // not much we can do if this fails
	case <-timer.C:
		http.Error(rw, "no answer", http.StatusServiceUnavailable)
	case <-r.Context().Done():
	}
}

// Service answers every queued request without blocking.
func (s *Server) Service() {
	for {
		select {
		case req := <-s.requests:
			req.reply <- s.answer(req.path)
		default:
			return
		}
	}
}

func (s *Server) answer(path string) response {
	switch path {
	case "/":
		m := s.source.Last()
		recent := s.source.Recent()
		wd := webdata{
			TimeNow:    s.clock.Now().Format(time.RFC822),
			Hostname:   s.hostname,
			WindSpeed:  m.WindSpeed,
			WindAvg:    recent.Average,
			WindGust:   recent.Maximum,
			Milliamps:  m.Milliamps,
			Millivolts: m.Millivolts,
			Filtered:   m.Filtered,
			Fault:      m.Fault.String(),
			Connected:  s.link.IsConnected(),
		}
		js, err := json.Marshal(wd)
		if err != nil {
			logger.Errorf("JSON error [%v]", err)
			return response{http.StatusInternalServerError, "text/plain", []byte(err.Error())}
		}
		logger.Debugf("Web read: [%v]", string(js))
		return response{http.StatusOK, "application/json", js}
	case "/lastdata":
		return response{http.StatusOK, "text/plain; charset=utf-8", []byte(s.source.LastData())}
	}
	return response{http.StatusNotFound, "text/plain; charset=utf-8", []byte("not found\n")}
}

// ListenAndServe runs the HTTP server until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
	logger.Infof("Status server listening on [%v]", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
