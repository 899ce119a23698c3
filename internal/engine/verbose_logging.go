package engine

// EngineVerbosity controls how much of the pass gets logged
// (0=verbose, 1=node, 2=cluster, 3=run).
var EngineVerbosity = 3

func engLogVerbose(format string, args ...interface{}) {
	if EngineVerbosity <= 0 {
		DebugPrintf(format+"\n", args...)
	}
}

func engLogNode(format string, args ...interface{}) {
	if EngineVerbosity <= 1 {
		DebugPrintf(format+"\n", args...)
	}
}

func engLogCluster(format string, args ...interface{}) {
	if EngineVerbosity <= 2 {
		DebugPrintf(format+"\n", args...)
	}
}

func engLog(format string, args ...interface{}) {
	DebugPrintf(format+"\n", args...)
}
