package config

type WorkerKeyStruct struct {
	RecalculatePlanQueue string
}

var WorkerKey = &WorkerKeyStruct{
	RecalculatePlanQueue: "recalculate_plan_queue",
}
