package exporter

// ProgressEvent 导出进度事件（用于日志/界面展示）
type ProgressEvent struct {
	Percent int
	Stage   string
}

func reportProgress(progress func(ProgressEvent), percent int, stage string) {
	if progress == nil {
		return
	}
	percent = min(max(percent, 0), 100)
	progress(ProgressEvent{Percent: percent, Stage: stage})
}
