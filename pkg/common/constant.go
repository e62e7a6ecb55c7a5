package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyMedboxDBType string = "MEDBOX_DB_TYPE"
	EnvKeyMedboxDbPath string = "MEDBOX_DB_PATH"

	EnvKeyMedboxHttpHostPort string = "MEDBOX_HTTP_HOST_PORT"

	EnvKeyMedboxAdminUsername string = "MEDBOX_ADMIN_USERNAME"
	EnvKeyMedboxAdminPassword string = "MEDBOX_ADMIN_PASSWORD"

	EnvKeyMedboxDeviceRate  string = "MEDBOX_DEVICE_RATE"
	EnvKeyMedboxDeviceBurst string = "MEDBOX_DEVICE_BURST"

	EnvKeyMedboxCacheTTLSeconds string = "MEDBOX_CACHE_TTL_SECONDS"

	EnvKeyMedboxVapidPublicKey  string = "MEDBOX_VAPID_PUBLIC_KEY"
	EnvKeyMedboxVapidPrivateKey string = "MEDBOX_VAPID_PRIVATE_KEY"
	EnvKeyMedboxPushSubject     string = "MEDBOX_PUSH_SUBJECT"
	EnvKeyMedboxNotifyWorkers   string = "MEDBOX_NOTIFY_WORKERS"

	LoggerNameMedboxCore    string = "medbox_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameStore         string = "store"
	LoggerNameNotify        string = "notify"

	LoggerFieldCategory        string = "category"
	LoggerCategoryStatus       string = "status"
	LoggerCategorySchedule     string = "schedule"
	LoggerCategoryReset        string = "reset"
	LoggerCategorySubscription string = "subscription"
)
