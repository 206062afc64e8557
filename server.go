package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/counter"
	"github.com/Zachkp/portfolio/internal/live"
	"github.com/Zachkp/portfolio/internal/store"
)

// site holds everything the handlers share.
type site struct {
	cfg     *config.Config
	counter *counter.Counter
	db      *store.DB
	hub     *live.Hub
	mail    mailer

	adminToken  string
	hashingSalt string
}

func newSite(cfg *config.Config, c *counter.Counter, db *store.DB, mail mailer) *site {
	s := &site{
		cfg:     cfg,
		counter: c,
		db:      db,
		mail:    mail,
	}
	s.hub = live.NewHub(c, db, live.Options{
		Sections:     cfg.Tracker.Sections,
		Default:      cfg.Tracker.Default,
		Threshold:    cfg.Tracker.Threshold,
		StartupDelay: cfg.Tracker.StartupDelay,
	}, cfg.Server.AllowedOrigin)
	s.initAdminToken()
	return s
}

func (s *site) router() *gin.Engine {
	r := gin.Default()
	r.LoadHTMLGlob(s.cfg.Server.Templates)

	r.Static("/images", "./images")
	r.Static("/static", "./static")
	r.Use(s.visitorTrackingMiddleware())

	// Home page route
	r.GET("/", func(c *gin.Context) {
		value := s.counter.Value()
		c.HTML(http.StatusOK, "index.html", gin.H{
			"name":           OwnerName,
			"tagline":        Tagline,
			"intro":          Intro,
			"aboutMe":        AboutMe,
			"skills":         Skills,
			"additionalTech": AdditionalTech,
			"learning":       CurrentlyLearning,
			"projects":       Projects,
			"experiences":    Experiences,
			"sections":       s.cfg.Tracker.Sections,
			"activeSection":  s.cfg.Tracker.Default,
			"codingSeconds":  counter.Format(value),
			"threshold":      s.cfg.Tracker.Threshold,
			"startupDelayMs": s.cfg.Tracker.StartupDelay.Milliseconds(),
		})
	})

	// HTMX counter fragment, polled by pages without websocket support
	r.GET("/counter", func(c *gin.Context) {
		c.HTML(http.StatusOK, "counter.html", gin.H{
			"codingSeconds": counter.Format(s.counter.Value()),
		})
	})

	r.GET("/counter/stream", s.streamCounter)

	r.GET("/live", func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request, hashIP(c.ClientIP(), s.hashingSalt))
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"codingSeconds": s.counter.Value(),
			"liveSessions":  s.hub.Count(),
		})
	})

	// HTMX Contact form endpoint - returns just the form HTML
	r.GET("/contact-form", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"title": "Contact Me",
		})
	})

	r.POST("/contact", s.handleContact)

	s.setupAdminRoutes(r)
	return r
}

// streamCounter pushes every counter publish as a server-sent event until the
// client disconnects.
func (s *site) streamCounter(c *gin.Context) {
	ticks := make(chan int64, 1)
	cancel := s.counter.Subscribe(func(v int64) {
		select {
		case ticks <- v:
		default:
			// Reader is behind; it gets the next value instead.
		}
	})
	defer cancel()

	sendTick := func(v int64) {
		c.SSEvent("tick", gin.H{"seconds": v, "formatted": counter.Format(v)})
	}

	c.Header("Cache-Control", "no-cache")
	sendTick(s.counter.Value())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case v := <-ticks:
			sendTick(v)
			return true
		}
	})
}

func (s *site) handleContact(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("fullName"))
	email := strings.TrimSpace(c.PostForm("email"))
	message := strings.TrimSpace(c.PostForm("message"))

	if name == "" || email == "" || message == "" {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": "Please fill in your name, email and message.",
		})
		return
	}

	id, err := s.db.SaveMessage(c.Request.Context(), name, email, message)
	if err != nil {
		log.Printf("Error saving contact message: %v", err)
	}

	if err := s.mail(name, email, message); err != nil {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": "Sorry, there was an error sending your message. Please try again later.",
		})
		return
	}
	if id > 0 {
		if err := s.db.MarkDelivered(c.Request.Context(), id); err != nil {
			log.Printf("Error marking message %d delivered: %v", id, err)
		}
	}

	c.HTML(http.StatusOK, "contact-success.html", gin.H{
		"success": "Thank you for your message! I'll get back to you soon.",
	})
}

// serve runs the HTTP server until ctx is done, then shuts it down and tears
// down every live session.
func (s *site) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Portfolio listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
