package config

type WorkerKeyStruct struct {
	PersistResponsesQueue string
	PersistActivityQueue  string
	AnalyzeInterviewQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistResponsesQueue: "persist_responses_queue",
	PersistActivityQueue:  "persist_activity_queue",
	AnalyzeInterviewQueue: "analyze_interviews_queue",
}
