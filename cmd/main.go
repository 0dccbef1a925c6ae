package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Leganyst/production-scheduler/internal/capacity"
	"github.com/Leganyst/production-scheduler/internal/config"
	"github.com/Leganyst/production-scheduler/internal/db"
	"github.com/Leganyst/production-scheduler/internal/model"
	"github.com/Leganyst/production-scheduler/internal/placement"
	"github.com/Leganyst/production-scheduler/internal/reconcile"
	"github.com/Leganyst/production-scheduler/internal/route"
	"github.com/Leganyst/production-scheduler/internal/service"
)

func main() {
	// 1. Конфигурация: .env, затем переменные окружения.
	config.LoadEnv()

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("load db config: %v", err)
	}
	engineCfg, err := config.LoadEngineConfig()
	if err != nil {
		log.Fatalf("load engine config: %v", err)
	}
	srvCfg := config.LoadServerConfig()

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 4. Движок мощностей, раскладка и лента ERP.
	engine := capacity.NewEngine(gormDB, *engineCfg)
	placer := placement.NewPlacer(engine, engineCfg.PlacementHorizonDays)
	placementSvc := placement.NewService(gormDB, placer, nil)
	feed := reconcile.NewFeed(gormDB, nil)
	reconciler := reconcile.NewReconciler(gormDB, placementSvc, nil, nil)

	// 5. gRPC-сервер.
	grpcServer := grpc.NewServer()
	service.RegisterCapacityServiceServer(grpcServer, service.NewCapacityService(engine, placer))
	service.RegisterLineServiceServer(grpcServer, service.NewLineService(engine, placementSvc))

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus(service.CapacityServiceName, healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(service.LineServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", srvCfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", srvCfg.GRPCAddr, err)
	}

	go func() {
		log.Printf("gRPC server listening on %s", srvCfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("grpc serve: %v", err)
		}
	}()

	// 6. REST на Fiber.
	app := route.NewApp(route.AppConfig{CORSOrigins: srvCfg.CORSOrigins})
	route.SetupRoutes(app, route.Deps{
		DB:         gormDB,
		Engine:     engine,
		Placement:  placementSvc,
		Feed:       feed,
		Reconciler: reconciler,
	})

	go func() {
		log.Printf("HTTP server listening on %s", srvCfg.HTTPAddr)
		if err := app.Listen(srvCfg.HTTPAddr); err != nil {
			log.Fatalf("http serve: %v", err)
		}
	}()

	// 7. Периодический разбор ленты ERP.
	reconcileCron, err := reconcile.StartCron(reconciler, srvCfg.ReconcileCron, nil)
	if err != nil {
		log.Fatalf("start reconcile cron: %v", err)
	}

	// 8. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	healthSrv.Shutdown()

	<-reconcileCron.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	grpcServer.GracefulStop()
}
