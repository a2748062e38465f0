package helpers

import (
	"gopkg.in/yaml.v2"
	"io/ioutil"
	"log"
)

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DBNum    int    `yaml:"dbNum"`
}

type RunnerPoolConfig struct {
	ApiBase       string `yaml:"apibase"`
	Token         string `yaml:"token"`
	PoolName      string `yaml:"poolname"`
	WorkflowId    int64  `yaml:"workflowid"`
	WebhookSecret string `yaml:"webhooksecret"`
}

type QueueConfig struct {
	BatchCap              int `yaml:"batchcap"`
	VisibilityTimeoutSecs int `yaml:"visibilitytimeout"`
}

type Config struct {
	Redis             RedisConfig      `yaml:"redis"`
	Pool              RunnerPoolConfig `yaml:"runnerpool"`
	Queue             QueueConfig      `yaml:"queue"`
	CompletionHookUrl string           `yaml:"completionhookurl"`
	ListenPort        int              `yaml:"listenport"`
}

func ReadConfig(configFile string) (*Config, error) {
	configBytes, readErr := ioutil.ReadFile(configFile)
	if readErr != nil {
		log.Printf("Could not read config from '%s': %s\n", configFile, readErr)
		return nil, readErr
	}

	var conf Config

	err := yaml.Unmarshal(configBytes, &conf)
	if err != nil {
		log.Printf("Could not understand config from '%s': %s\n", configFile, err)
		return nil, err
	}
	return &conf, nil
}
