package env_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/sethvargo/go-envconfig"

	"github.com/luma/cosmogram/internal/env"
)

var _ = Describe("env", func() {
	Describe("LoadConfigWith()", func() {
		It("falls back to the defaults", func() {
			config, err := env.LoadConfigWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
			Expect(err).To(Succeed())

			Expect(config.Host).To(Equal("localhost"))
			Expect(config.Port).To(Equal(5190))
			Expect(config.APIURL).To(Equal("http://localhost:2222/api"))
			Expect(config.DialTimeout).To(Equal(5 * time.Second))
			Expect(config.IOTimeout).To(Equal(5 * time.Second))
			Expect(config.LogLevel).To(Equal("warn"))
			Expect(config.LogFile).To(BeEmpty())
		})

		It("reads overrides from the environment", func() {
			config, err := env.LoadConfigWith(context.Background(), envconfig.MapLookuper(map[string]string{
				"COSMOGRAM_HOST":             "link.example.org",
				"COSMOGRAM_PORT":             "6000",
				"COSMOGRAM_IO_TIMEOUT":       "250ms",
				"COSMOGRAM_LOG_LEVEL":        "debug",
				"COSMOGRAM_LOG_FILE":         "/tmp/cosmogram.log",
				"COSMOGRAM_LOG_MAX_AGE_DAYS": "7",
			}))
			Expect(err).To(Succeed())

			Expect(config.Host).To(Equal("link.example.org"))
			Expect(config.Port).To(Equal(6000))
			Expect(config.IOTimeout).To(Equal(250 * time.Millisecond))
			Expect(config.LogLevel).To(Equal("debug"))
			Expect(config.LogFile).To(Equal("/tmp/cosmogram.log"))
			Expect(config.LogMaxAgeDays).To(Equal(7))
		})

		It("rejects a port that is not a number", func() {
			_, err := env.LoadConfigWith(context.Background(), envconfig.MapLookuper(map[string]string{
				"COSMOGRAM_PORT": "many",
			}))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("MakeLogger()", func() {
		It("rejects unknown levels", func() {
			_, err := env.MakeLogger(&env.Config{LogLevel: "chatty"})
			Expect(err).To(HaveOccurred())
		})

		It("builds a stderr logger by default", func() {
			log, err := env.MakeLogger(&env.Config{LogLevel: "info"})
			Expect(err).To(Succeed())
			Expect(log).NotTo(BeNil())
		})

		It("writes JSON lines to the log file", func() {
			dir, err := os.MkdirTemp("", "cosmogram-log")
			Expect(err).To(Succeed())
			defer os.RemoveAll(dir)

			path := filepath.Join(dir, "client.log")

			log, err := env.MakeLogger(&env.Config{
				LogLevel:      "info",
				LogFile:       path,
				LogMaxSizeMB:  1,
				LogMaxBackups: 1,
				LogMaxAgeDays: 1,
			})
			Expect(err).To(Succeed())

			log.Debug("filtered out")
			log.Info("hello")
			_ = log.Sync()

			data, err := os.ReadFile(path)
			Expect(err).To(Succeed())
			Expect(string(data)).To(ContainSubstring(`"msg":"hello"`))
			Expect(string(data)).NotTo(ContainSubstring("filtered out"))
		})
	})
})
