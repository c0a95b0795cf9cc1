package util

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"
)

// browserCommand 各平台打开 URL 的命令
func browserCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "windows":
		// rundll32 在 Windows 7 上也可用
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		return exec.Command("open", url)
	}
	return exec.Command("xdg-open", url)
}

// OpenBrowser 打开默认浏览器，失败时在 Windows/Linux 上尝试备选方式
func OpenBrowser(url string) error {
	err := browserCommand(runtime.GOOS, url).Start()
	if err == nil {
		return nil
	}

	switch runtime.GOOS {
	case "windows":
		return exec.Command("explorer", url).Start()
	case "linux":
		for _, browser := range []string{"sensible-browser", "firefox", "google-chrome", "chromium-browser"} {
			if exec.Command(browser, url).Start() == nil {
				return nil
			}
		}
	}
	return err
}

// FindAvailablePort 从 startPort 开始向后查找可监听的端口，最多尝试 tries 个
func FindAvailablePort(startPort, tries int) (int, error) {
	for port := startPort; port < startPort+tries; port++ {
		l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		_ = l.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port in %d-%d", startPort, startPort+tries-1)
}

// LocalURL 本机访问地址
func LocalURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}
