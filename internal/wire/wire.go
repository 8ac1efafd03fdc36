package wire

import (
	"Agora/internal/api"
	"Agora/internal/api/config"
	"Agora/internal/api/handler"
	"Agora/internal/job"
	"Agora/internal/pkg/cron"
	"Agora/internal/pkg/es"
	"Agora/internal/pkg/kafka"
	"Agora/internal/pkg/mongo"
	"Agora/internal/repository"
	"Agora/internal/service"
	log "log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router *gin.Engine
	DB     *gorm.DB
	// KafkaManager 与 Producer 在未配置 broker 时为 nil
	KafkaManager *kafka.ConsumerManager
	Producer     *kafka.NotificationProducer
	CronMgr      *cron.Manager
}

// BuildApplication mongoDB 为 nil 时不提供通知箱，也不启动通知消费者
// esClient 为 nil 时推荐候选直接查询数据库
func BuildApplication(db *gorm.DB, mongoDB *mongodriver.Database, esClient *elasticsearch.TypedClient, cfg *config.Config) (*ApplicationContainer, error) {
	app := &ApplicationContainer{DB: db}

	// Repository
	userRepo := repository.NewUserRepo(db)
	postRepo := repository.NewPostRepo(db)
	followRepo := repository.NewUserFollowRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	actionRepo := repository.NewPostActionRepo(db)
	blockRepo := repository.NewBlockRepo(db)
	hiddenRepo := repository.NewHiddenPostRepo(db)
	logRepo := repository.NewInteractionLogRepo(db)

	candidateRepo := postRepo
	var postIndexJob *job.PostIndexJob
	if esClient != nil {
		esPostRepo := es.NewPostRepo(esClient, cfg.Elastic.PostIndex)
		candidateRepo = es.NewCandidateRepo(postRepo, esPostRepo)
		postIndexJob = job.NewPostIndexJob(postRepo, esPostRepo, cfg.Elastic.SyncWindow, service.SystemClock)
	}

	var notifier service.Notifier = service.NopNotifier{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewNotificationProducer(cfg)
		if err != nil {
			return nil, err
		}
		app.Producer = producer
		notifier = producer
	} else {
		log.Warn("kafka brokers not configured, notifications disabled")
	}

	// Service
	visibilitySvc := service.NewVisibilityService(blockRepo, hiddenRepo)
	quotaSvc := service.NewInteractionQuotaService(db, cfg.Quota, service.SystemClock)
	recommendSvc := service.NewRecommendService(candidateRepo, userRepo, followRepo, categoryRepo, actionRepo, visibilitySvc, cfg.Recommend, service.SystemClock)
	feedSvc := service.NewFeedService(postRepo, userRepo, followRepo, categoryRepo, actionRepo, visibilitySvc, cfg.Feed)
	discoverSvc := service.NewDiscoverService(postRepo, userRepo, actionRepo, visibilitySvc, recommendSvc, cfg.Feed)
	actionSvc := service.NewPostActionService(db, postRepo, actionRepo, blockRepo, visibilitySvc, quotaSvc, notifier)
	relationSvc := service.NewRelationService(db, userRepo, postRepo, categoryRepo, blockRepo, hiddenRepo, notifier, service.SystemClock)
	moderationSvc := service.NewModerationService(postRepo, notifier)

	handlers := &api.HandlersGroup{
		FeedHandler:       handler.NewFeedHandler(feedSvc, discoverSvc, recommendSvc, cfg.Feed, cfg.Recommend),
		PostActionHandler: handler.NewPostActionHandler(actionSvc, quotaSvc),
		RelationHandler:   handler.NewRelationHandler(relationSvc),
		ModerationHandler: handler.NewModerationHandler(moderationSvc),
	}

	if mongoDB != nil {
		sysBoxRepo := mongo.NewSysBoxRepo(mongoDB)
		handlers.SysBoxHandler = handler.NewSysBoxHandler(service.NewSysBoxService(sysBoxRepo, userRepo))

		if len(cfg.Kafka.Brokers) > 0 {
			kafkaMgr, err := kafka.NewConsumerManager(cfg, sysBoxRepo)
			if err != nil {
				return nil, err
			}
			app.KafkaManager = kafkaMgr
		}
	}

	app.Router = api.SetupRouter(handlers)

	// Job
	app.CronMgr = cron.NewCronManager(
		job.NewInteractionLogCleanJob(logRepo, cfg.Quota.RetentionDays, service.SystemClock),
		job.NewCounterReconcileJob(userRepo, categoryRepo),
		postIndexJob,
	)

	return app, nil
}
