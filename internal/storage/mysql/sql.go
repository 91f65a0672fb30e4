package mysql

const upsertRecordSQL = `
INSERT INTO property_records
  (id, source_url, title, description, status, property_type, operation_type,
   city, neighborhood, price, currency, quality, extracted_at, doc)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  source_url     = VALUES(source_url),
  title          = VALUES(title),
  description    = VALUES(description),
  status         = VALUES(status),
  property_type  = VALUES(property_type),
  operation_type = VALUES(operation_type),
  city           = VALUES(city),
  neighborhood   = VALUES(neighborhood),
  price          = VALUES(price),
  currency       = VALUES(currency),
  quality        = VALUES(quality),
  extracted_at   = VALUES(extracted_at),
  doc            = VALUES(doc),
  updated_at     = CURRENT_TIMESTAMP
`

// A listing rejected again keeps its first id and counts the sighting.
const insertRejectionSQL = `
INSERT INTO rejections (id, stage, reasons, title, seen_at)
VALUES (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  stage      = VALUES(stage),
  reasons    = VALUES(reasons),
  title      = VALUES(title),
  seen_at    = VALUES(seen_at),
  times_seen = rejections.times_seen + 1
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getRecordSQL = `SELECT doc FROM property_records WHERE id = ?`

// listRecordsPrefix is completed with optional WHERE clauses, then
// listRecordsSuffix. Paging is keyset on id.
const listRecordsPrefix = `SELECT id, doc FROM property_records`

const listRecordsSuffix = ` ORDER BY id LIMIT ?`

const countsSQL = `
SELECT
  COUNT(*),
  COALESCE(SUM(status = 'accepted'), 0),
  COALESCE(SUM(status = 'rejected'), 0),
  AVG(CASE WHEN status = 'accepted' THEN quality END)
FROM property_records
`

const countRejectionsSQL = `SELECT COUNT(*) FROM rejections`

// Bucket queries average MXN prices only; foreign-currency rows still count.
// The grouping column is spliced in from a fixed allow-list.
const bucketSQLFmt = `
SELECT %[1]s, COUNT(*), AVG(CASE WHEN currency = 'MXN' THEN price END)
FROM property_records
WHERE status = 'accepted' AND %[1]s IS NOT NULL
GROUP BY %[1]s
ORDER BY COUNT(*) DESC, %[1]s
`
