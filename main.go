package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"skillshare/cache"
	"skillshare/config"
	"skillshare/database"
	"skillshare/handlers"
	"skillshare/mailer"
	"skillshare/middleware"
	"skillshare/notify"
	"skillshare/routes"
	"skillshare/services"
	"skillshare/storage"
	"skillshare/store"
	"skillshare/store/mongostore"
	"skillshare/store/sqlstore"
	"skillshare/websocket"
)

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		log.Println("🔌 Connecting to MongoDB...")
		client, err := database.ConnectMongo(cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return mongostore.New(ctx, client, cfg.MongoDatabase)
	default:
		log.Printf("🔌 Opening %s database...", cfg.StoreDriver)
		db, err := database.OpenSQL(cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return sqlstore.New(db)
	}
}

func main() {
	log.Println("🚀 Starting SkillShare Backend Server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Invalid configuration: ", err)
	}

	// ===== GIN MODE =====
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
		log.Println("⚙️ Running in RELEASE mode")
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("⚙️ Running in DEBUG mode")
	}

	// ===== STORAGE =====
	st, err := openStore(cfg)
	if err != nil {
		log.Fatal("❌ Failed to open store: ", err)
	}
	log.Printf("✅ %s store ready", cfg.StoreDriver)

	var otpCodes store.OTPStore = st
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		if rdb, err = database.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
			log.Fatal("❌ Failed to connect to Redis: ", err)
		}
		otpCodes = cache.NewOTPStore(rdb)
		log.Println("✅ OTP codes kept in Redis")
	}

	var mail mailer.Mailer = mailer.Log{}
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
		log.Printf("✅ Sending mail through %s", cfg.SMTPHost)
	} else {
		log.Println("⚠️  SMTP not configured - verification codes are written to the log")
	}

	var uploader storage.Uploader
	uploadDir := ""
	if cfg.CloudinaryURL != "" {
		if uploader, err = storage.NewCloudinary(cfg.CloudinaryURL, "skillshare"); err != nil {
			log.Fatal("❌ Cloudinary configuration error: ", err)
		}
		log.Println("✅ Uploads go to Cloudinary")
	} else {
		uploader = storage.NewLocal(cfg.UploadDir, cfg.PublicURL)
		uploadDir = cfg.UploadDir
		log.Printf("⚠️  Cloudinary not configured - uploads stored in %s", cfg.UploadDir)
	}

	// ===== REALTIME =====
	log.Println("🔌 Initializing WebSocket hub...")
	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := websocket.NewHub()
	go hub.Run(hubCtx)

	events := notify.Fanout{hub}
	vapidPublicKey := ""
	if cfg.PushEnabled() {
		push := notify.NewWebPush(st, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
		events = append(events, push)
		vapidPublicKey = push.PublicKey()
		log.Println("✅ Web Push enabled")
	} else {
		log.Println("⚠️  Web Push disabled - run cmd/vapidgen and set VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY")
	}

	// ===== SERVICES =====
	otp := services.NewOTPService(otpCodes, st, mail, cfg.BcryptCost)
	google := services.NewGoogleAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	if !cfg.GoogleEnabled() {
		log.Println("⚠️  Google OAuth not configured - set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}

	h := handlers.New(handlers.Deps{
		Users:          services.NewUserService(st, otp, cfg.BcryptCost),
		OTP:            otp,
		Messages:       services.NewMessageService(st, st, events),
		Catalog:        services.NewCatalogService(st, st),
		Cart:           services.NewCartService(st, st, st),
		Google:         google,
		Tokens:         middleware.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		Uploader:       uploader,
		Push:           st,
		VAPIDPublicKey: vapidPublicKey,
		FrontendURL:    cfg.FrontendURL,
	})

	limiter := middleware.NewIPRateLimiter(20, time.Minute)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				limiter.Sweep()
			case <-hubCtx.Done():
				return
			}
		}
	}()

	// ===== ROUTER =====
	router := routes.SetupRouter(h, hub, routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		UploadDir:   uploadDir,
		AuthLimiter: limiter,
	})
	log.Println("✅ WebSocket endpoint: /ws")

	// ===== SERVER CONFIG =====
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Server error: ", err)
		}
	}()

	log.Println("✅ Server is ready and accepting connections")

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("❌ Forced shutdown:", err)
	}
	stopHub()

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Println("❌ Redis close:", err)
		}
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.Println("❌ Store close:", err)
	}

	log.Println("👋 Server stopped gracefully")
}
