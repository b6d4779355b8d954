package util

import (
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ffprobe 输出中需要的字段
type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// FFprobeAvailable 检查 ffprobe 是否已安装
func FFprobeAvailable() bool {
	_, err := exec.LookPath("ffprobe")
	return err == nil
}

// ProbeVideoDuration 返回视频时长（秒，向上取整）
func ProbeVideoDuration(path string) (int, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("获取视频信息失败: %w", err)
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(out string) (int, error) {
	var result probeResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return 0, fmt.Errorf("解析视频信息失败: %w", err)
	}
	hasVideo := false
	for _, s := range result.Streams {
		if s.CodecType == "video" {
			hasVideo = true
			break
		}
	}
	if !hasVideo {
		return 0, fmt.Errorf("文件中没有视频流")
	}
	d, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		return 0, nil
	}
	return int(math.Ceil(d)), nil
}
