package metadata

/** Definition for the entry point of a job. Results are sent on the channel. */
type JobStart func(params interface{}, results chan<- interface{}) error

/** Definition for completion of a job. */
type JobOnComplete func(results <-chan interface{})

/** @brief Describes a type of job */
type JobType int

const (
	/**
	 * @brief A job that reads and writes video files. These run one at a time
	 * so two renders never compete for the same disk and CPU.
	 */
	JOB_TYPE_RENDER JobType = 0x04
)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief Unique id of the job, used in log lines. */
	ID string
	/** @brief The type of job. */
	JobType JobType
	/** @brief Data to be passed to the entry point upon execution. */
	InputParams interface{}
	/** @brief Invoked when the job starts. Required. */
	OnStart JobStart
	/** @brief Invoked when the job successfully completes. Optional. */
	OnComplete JobOnComplete
	/** @brief Invoked when the job fails. Optional. */
	OnFailure JobOnComplete
	/** @brief Invoked after either of the above. Optional. */
	OnCompletionCallback func()
}
