package cost

// Account usage queries. Each binds the report window as (from, to).
const (
	warehouseMeteringSQL = `SELECT WAREHOUSE_NAME, DATE_TRUNC('HOUR', START_TIME) AS HOUR, SUM(CREDITS_USED) AS CREDITS_USED
FROM SNOWFLAKE.ACCOUNT_USAGE.WAREHOUSE_METERING_HISTORY
WHERE START_TIME >= ? AND START_TIME <= ?
GROUP BY WAREHOUSE_NAME, HOUR
ORDER BY HOUR`

	storageUsageSQL = `SELECT DATABASE_NAME,
    AVG(AVERAGE_DATABASE_BYTES) AS ACTIVE_BYTES,
    AVG(AVERAGE_FAILSAFE_BYTES) AS FAILSAFE_BYTES
FROM SNOWFLAKE.ACCOUNT_USAGE.DATABASE_STORAGE_USAGE_HISTORY
WHERE USAGE_DATE >= ? AND USAGE_DATE <= ?
GROUP BY DATABASE_NAME
ORDER BY ACTIVE_BYTES DESC`

	queryHistorySQL = `SELECT DATE_TRUNC('HOUR', START_TIME) AS HOUR, WAREHOUSE_NAME,
    COUNT(*) AS QUERY_COUNT,
    AVG(EXECUTION_TIME) AS AVG_EXECUTION_TIME,
    SUM(CREDITS_USED_CLOUD_SERVICES) AS CREDITS_USED
FROM SNOWFLAKE.ACCOUNT_USAGE.QUERY_HISTORY
WHERE START_TIME >= ? AND START_TIME <= ?
GROUP BY HOUR, WAREHOUSE_NAME
ORDER BY HOUR`
)
