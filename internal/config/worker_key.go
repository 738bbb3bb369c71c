package config

type WorkerKeyStruct struct {
	PersistDraftsQueue string
	RefreshStatsQueue  string
}

var WorkerKey = &WorkerKeyStruct{
	PersistDraftsQueue: "persist_drafts_queue",
	RefreshStatsQueue:  "refresh_stats_queue",
}
