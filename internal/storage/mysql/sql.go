package mysql

const insertUserSQL = `
INSERT INTO users (username)
VALUES (?)
`

const getUserSQL = `
SELECT id, username FROM users WHERE id = ?
`

const getUserByUsernameSQL = `
SELECT id, username FROM users WHERE username = ?
`

const listUsersSQL = `
SELECT id, username FROM users ORDER BY id
`

const deleteUserSQL = `
DELETE FROM users WHERE id = ?
`

// Note: `text` is reserved; keep it quoted everywhere.
const listUserReviewsSQL = `
SELECT id, author_id, product_id, rating, ` + "`text`" + `
FROM reviews
WHERE author_id = ?
ORDER BY id
`

const listAllReviewsSQL = `
SELECT id, author_id, product_id, rating, ` + "`text`" + `
FROM reviews
ORDER BY id
`

// Both directions of the follow relation for one user in a single pass.
const listFollowEdgesSQL = `
SELECT follower_id, followee_id
FROM follows
WHERE follower_id = ? OR followee_id = ?
`

const listAllFollowEdgesSQL = `
SELECT follower_id, followee_id FROM follows
`

// INSERT IGNORE keeps a concurrently repeated follow idempotent at the
// storage level as well.
const insertFollowSQL = `
INSERT IGNORE INTO follows (follower_id, followee_id)
VALUES (?, ?)
`

const deleteFollowSQL = `
DELETE FROM follows WHERE follower_id = ? AND followee_id = ?
`

const insertProductSQL = `
INSERT INTO products (category, url)
VALUES (?, ?)
`

const getProductSQL = `
SELECT id, category, url FROM products WHERE id = ?
`

const listProductsSQL = `
SELECT id, category, url FROM products ORDER BY id
`

const listProductsByCategorySQL = `
SELECT id, category, url FROM products WHERE category = ? ORDER BY id
`

const deleteProductSQL = `
DELETE FROM products WHERE id = ?
`

const listProductReviewsSQL = `
SELECT id, author_id, product_id, rating, ` + "`text`" + `
FROM reviews
WHERE product_id = ?
ORDER BY id
`

const insertReviewSQL = "INSERT INTO reviews (author_id, product_id, rating, `text`) VALUES (?, ?, ?, ?)"

const deleteReviewSQL = `
DELETE FROM reviews WHERE id = ?
`
